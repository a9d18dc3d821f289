package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkcontrat-backend/internal/compliance"
	"checkcontrat-backend/internal/extract"
	"checkcontrat-backend/internal/llm"
	"checkcontrat-backend/internal/report"
)

func newTestService(analyser *fakeAnalyser) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	fixed := time.Date(2026, time.April, 2, 9, 30, 0, 0, time.UTC)
	return &Service{
		Repo:       repo,
		Analyser:   analyser,
		Retries:    1,
		RetryDelay: time.Millisecond,
		Now:        func() time.Time { return fixed },
	}, repo
}

func TestCheckContractPersistsEnvelope(t *testing.T) {
	analyser := &fakeAnalyser{env: conformeEnvelope()}
	svc, repo := newTestService(analyser)

	check, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "CDI")
	require.NoError(t, err)
	assert.Equal(t, ModuleContrat, check.Module)
	assert.Equal(t, []string{"u1_abc.pdf"}, check.InputFiles)
	assert.Equal(t, "report_abc.pdf", check.OutputFile)
	assert.Equal(t, "Conforme", check.Result)
	assert.NotEmpty(t, check.ID)

	require.Len(t, analyser.calls, 1)
	assert.Equal(t, ContractPrompt("CDI"), analyser.calls[0].Prompt)

	stored, err := repo.GetByID(context.Background(), check.ID)
	require.NoError(t, err)
	assert.Equal(t, check, stored)
}

func TestCheckPayslipStoresPayslipThenContract(t *testing.T) {
	analyser := &fakeAnalyser{env: conformeEnvelope()}
	svc, _ := newTestService(analyser)
	hours := 35

	check, err := svc.CheckPayslip(context.Background(), "u1", "u1_pay.pdf", "u1_ctr.docx", &hours)
	require.NoError(t, err)
	assert.Equal(t, ModuleFiche, check.Module)
	assert.Equal(t, []string{"u1_pay.pdf", "u1_ctr.docx"}, check.InputFiles)

	require.Len(t, analyser.calls, 1)
	call := analyser.calls[0]
	assert.Equal(t, "u1_pay.pdf", call.Payslip)
	assert.Equal(t, "u1_ctr.docx", call.Contract)
	assert.Equal(t, PayslipPrompt(), call.Prompt)
	require.NotNil(t, call.Hours)
	assert.Equal(t, 35, *call.Hours)
}

func TestCheckRejectsForeignFiles(t *testing.T) {
	analyser := &fakeAnalyser{env: conformeEnvelope()}
	svc, _ := newTestService(analyser)

	_, err := svc.CheckContract(context.Background(), "u1", "u2_abc.pdf", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CheckContract(context.Background(), "u1", "../u1_abc.pdf", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CheckPayslip(context.Background(), "u1", "u1_pay.pdf", "u12_ctr.pdf", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, analyser.calls)
}

func TestCheckValidatesInput(t *testing.T) {
	svc, _ := newTestService(&fakeAnalyser{})
	negative := -1

	_, err := svc.CheckContract(context.Background(), "u1", " ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckPayslip(context.Background(), "u1", "u1_a.pdf", "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckPayslip(context.Background(), "u1", "u1_a.pdf", "u1_b.pdf", &negative)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "hours must not be negative")
}

func TestCheckRetriesTransientServiceErrorOnce(t *testing.T) {
	analyser := &fakeAnalyser{
		env:  conformeEnvelope(),
		errs: []error{&llm.ServiceError{Op: "chat completion", StatusCode: 503, Err: errors.New("busy")}},
	}
	svc, _ := newTestService(analyser)

	check, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "Conforme", check.Result)
	assert.Len(t, analyser.calls, 2)
}

func TestCheckGivesUpAfterRetries(t *testing.T) {
	busy := &llm.ServiceError{Op: "chat completion", StatusCode: 503, Err: errors.New("busy")}
	analyser := &fakeAnalyser{errs: []error{busy, busy, busy}}
	svc, repo := newTestService(analyser)

	_, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
	assert.ErrorAs(t, err, new(*llm.ServiceError))
	assert.Len(t, analyser.calls, 2)

	all, _ := repo.ListByUser(context.Background(), "u1", 0, 0)
	assert.Empty(t, all)
}

func TestCheckDoesNotRetryPermanentErrors(t *testing.T) {
	for _, err := range []error{
		extract.ErrFileNotFound,
		&llm.ServiceError{Op: "chat completion", StatusCode: 401, Err: errors.New("bad key")},
		&report.RenderError{Err: errors.New("disk full")},
	} {
		analyser := &fakeAnalyser{errs: []error{err}}
		svc, _ := newTestService(analyser)

		_, got := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
		assert.ErrorIs(t, got, err)
		assert.Len(t, analyser.calls, 1, "error %v must not be retried", err)
	}
}

func TestCheckAppliesTimeout(t *testing.T) {
	svc, _ := newTestService(&fakeAnalyser{})
	svc.Timeout = 20 * time.Millisecond
	svc.Analyser = blockingAnalyser{}

	_, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout", FailureReason(err))
}

type blockingAnalyser struct{}

func (blockingAnalyser) AnalyseSingleDocument(ctx context.Context, file, prompt string) (compliance.Envelope, error) {
	<-ctx.Done()
	return compliance.Envelope{}, &llm.ServiceError{Op: "chat completion", Err: ctx.Err()}
}

func (b blockingAnalyser) AnalysePairedDocuments(ctx context.Context, payslipFile, contractFile, prompt string, hours *int) (compliance.Envelope, error) {
	return b.AnalyseSingleDocument(ctx, payslipFile, prompt)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "file_not_found", FailureReason(extract.ErrFileNotFound))
	assert.Equal(t, "unsupported_file_type", FailureReason(extract.ErrUnsupportedFileType))
	assert.Equal(t, "render", FailureReason(&report.RenderError{Err: errors.New("x")}))
	assert.Equal(t, "llm", FailureReason(&llm.ServiceError{Op: "x", Err: errors.New("x")}))
	assert.Equal(t, "internal", FailureReason(errors.New("x")))
}

func TestGetHidesForeignChecks(t *testing.T) {
	svc, _ := newTestService(&fakeAnalyser{env: conformeEnvelope()})
	check, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "u1", check.ID)
	require.NoError(t, err)
	assert.Equal(t, check.ID, got.ID)

	_, err = svc.Get(context.Background(), "u2", check.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryIgnoresCase(t *testing.T) {
	svc, repo := newTestService(&fakeAnalyser{})
	seedChecks(t, repo, "u1", "Conforme", "conforme", "Non conforme", "NON CONFORME", "Partiel")

	sum, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 5, Conforme: 2, NonConforme: 2}, sum)
}

func TestOwnsReport(t *testing.T) {
	svc, _ := newTestService(&fakeAnalyser{env: conformeEnvelope()})
	_, err := svc.CheckContract(context.Background(), "u1", "u1_abc.pdf", "")
	require.NoError(t, err)

	ok, err := svc.OwnsReport(context.Background(), "u1", "report_abc.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.OwnsReport(context.Background(), "u2", "report_abc.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}
