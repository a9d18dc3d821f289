package checks

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var checkColumns = []string{"id", "user_id", "module", "input_files", "output_file", "result", "detail", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateJoinsInputFiles(t *testing.T) {
	repo, mock := newMockRepo(t)
	check := Check{
		ID:         "check-1",
		UserID:     "u1",
		Module:     ModuleFiche,
		InputFiles: []string{"u1_payslip.pdf", "u1_contract.docx"},
		OutputFile: "report_x.pdf",
		Result:     "Conforme",
		Detail:     "RAS",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO checks").
		WithArgs(
			check.ID,
			check.UserID,
			check.Module,
			"u1_payslip.pdf;u1_contract.docx",
			check.OutputFile,
			check.Result,
			check.Detail,
			check.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), check); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDSplitsInputFiles(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM checks").
		WithArgs("check-1").
		WillReturnRows(sqlmock.NewRows(checkColumns).
			AddRow("check-1", "u1", ModuleFiche, "u1_a.pdf;u1_b.docx", "report_x.pdf", "Non conforme", "", created))

	check, err := repo.GetByID(context.Background(), "check-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(check.InputFiles) != 2 || check.InputFiles[0] != "u1_a.pdf" || check.InputFiles[1] != "u1_b.docx" {
		t.Fatalf("unexpected input files: %v", check.InputFiles)
	}
	if !check.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", check.CreatedAt)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM checks").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUserUnbounded(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM checks").
		WithArgs("u1", nil, 0).
		WillReturnRows(sqlmock.NewRows(checkColumns).
			AddRow("c2", "u1", ModuleContrat, "u1_b.pdf", "report_b.pdf", "Conforme", "", now).
			AddRow("c1", "u1", ModuleContrat, "u1_a.pdf", "report_a.pdf", "Conforme", "", now.Add(-time.Hour)))

	checks, err := repo.ListByUser(context.Background(), "u1", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(checks) != 2 || checks[0].ID != "c2" {
		t.Fatalf("unexpected checks: %+v", checks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserPaged(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM checks").
		WithArgs("u1", 20, 40).
		WillReturnRows(sqlmock.NewRows(checkColumns))

	checks, err := repo.ListByUser(context.Background(), "u1", 20, 40)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if checks == nil || len(checks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", checks)
	}
}

func TestPGRepoCountByResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT lower\\(result\\), count\\(\\*\\)").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"lower", "count"}).
			AddRow("conforme", 3).
			AddRow("non conforme", 1))

	counts, err := repo.CountByResult(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CountByResult: %v", err)
	}
	if counts["conforme"] != 3 || counts["non conforme"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestPGRepoHasReport(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1", "report_x.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasReport(context.Background(), "u1", "report_x.pdf")
	if err != nil {
		t.Fatalf("HasReport: %v", err)
	}
	if !ok {
		t.Fatalf("expected report to be owned")
	}
}
