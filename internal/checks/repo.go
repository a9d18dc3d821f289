package checks

import "context"

// Repo defines persistence operations for checks.
type Repo interface {
	Create(ctx context.Context, check Check) error
	GetByID(ctx context.Context, checkID string) (Check, error)
	// ListByUser returns checks newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error)
	// CountByResult groups a user's checks by lower-cased result.
	CountByResult(ctx context.Context, userID string) (map[string]int, error)
	HasReport(ctx context.Context, userID, outputFile string) (bool, error)
}
