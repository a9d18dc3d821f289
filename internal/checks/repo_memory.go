package checks

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores checks in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Check
	byUser map[string][]Check
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Check),
		byUser: make(map[string][]Check),
	}
}

// Create stores the check.
func (r *MemoryRepo) Create(ctx context.Context, check Check) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	check.InputFiles = append([]string(nil), check.InputFiles...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[check.ID] = check
	r.byUser[check.UserID] = append(r.byUser[check.UserID], check)
	return nil
}

// GetByID returns a check by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, checkID string) (Check, error) {
	if err := ctx.Err(); err != nil {
		return Check{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	check, ok := r.byID[checkID]
	if !ok {
		return Check{}, ErrNotFound
	}
	return check, nil
}

// ListByUser returns checks for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	checks := make([]Check, len(r.byUser[userID]))
	copy(checks, r.byUser[userID])
	r.mu.RUnlock()

	if offset >= len(checks) {
		return []Check{}, nil
	}
	sort.SliceStable(checks, func(i, j int) bool {
		return checks[i].CreatedAt.After(checks[j].CreatedAt)
	})

	end := len(checks)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return checks[offset:end], nil
}

func (r *MemoryRepo) CountByResult(ctx context.Context, userID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, c := range r.byUser[userID] {
		counts[strings.ToLower(c.Result)]++
	}
	return counts, nil
}

func (r *MemoryRepo) HasReport(ctx context.Context, userID, outputFile string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.byUser[userID] {
		if c.OutputFile == outputFile {
			return true, nil
		}
	}
	return false, nil
}
