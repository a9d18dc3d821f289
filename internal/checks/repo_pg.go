package checks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const inputFilesSep = ";"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new check.
func (r *PGRepo) Create(ctx context.Context, check Check) error {
	const query = `
INSERT INTO checks (id, user_id, module, input_files, output_file, result, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		check.ID,
		check.UserID,
		check.Module,
		strings.Join(check.InputFiles, inputFilesSep),
		check.OutputFile,
		check.Result,
		check.Detail,
		check.CreatedAt,
	)
	return err
}

// GetByID returns a check by ID.
func (r *PGRepo) GetByID(ctx context.Context, checkID string) (Check, error) {
	const query = `
SELECT id, user_id, module, input_files, output_file, result, detail, created_at
FROM checks
WHERE id = $1
LIMIT 1`
	check, err := scanCheck(r.DB.QueryRowContext(ctx, query, checkID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Check{}, ErrNotFound
		}
		return Check{}, err
	}
	return check, nil
}

// ListByUser returns checks for a user ordered by newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	const query = `
SELECT id, user_id, module, input_files, output_file, result, detail, created_at
FROM checks
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	if offset < 0 {
		offset = 0
	}
	// LIMIT NULL is unbounded in Postgres.
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := []Check{}
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checks, nil
}

func (r *PGRepo) CountByResult(ctx context.Context, userID string) (map[string]int, error) {
	const query = `
SELECT lower(result), count(*)
FROM checks
WHERE user_id = $1
GROUP BY lower(result)`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var result string
		var n int
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		counts[result] = n
	}
	return counts, rows.Err()
}

func (r *PGRepo) HasReport(ctx context.Context, userID, outputFile string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM checks WHERE user_id = $1 AND output_file = $2)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, userID, outputFile).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheck(row rowScanner) (Check, error) {
	var c Check
	var inputFiles string
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Module,
		&inputFiles,
		&c.OutputFile,
		&c.Result,
		&c.Detail,
		&c.CreatedAt,
	); err != nil {
		return Check{}, err
	}
	c.InputFiles = splitInputFiles(inputFiles)
	return c, nil
}

func splitInputFiles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, inputFilesSep)
}
