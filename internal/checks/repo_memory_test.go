package checks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChecks(t *testing.T, repo Repo, userID string, results ...string) []Check {
	t.Helper()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	var out []Check
	for i, result := range results {
		c := Check{
			ID:         userID + "-check-" + string(rune('a'+i)),
			UserID:     userID,
			Module:     ModuleContrat,
			InputFiles: []string{userID + "_file.pdf"},
			OutputFile: "report_" + string(rune('a'+i)) + ".pdf",
			Result:     result,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), c))
		out = append(out, c)
	}
	return out
}

func TestMemoryRepoListNewestFirstWithPaging(t *testing.T) {
	repo := NewMemoryRepo()
	seeded := seedChecks(t, repo, "u1", "Conforme", "Non conforme", "Conforme")
	seedChecks(t, repo, "u2", "Conforme")

	all, err := repo.ListByUser(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, seeded[2].ID, all[0].ID)
	assert.Equal(t, seeded[0].ID, all[2].ID)

	page, err := repo.ListByUser(context.Background(), "u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, seeded[1].ID, page[0].ID)

	empty, err := repo.ListByUser(context.Background(), "u1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepoGetByIDNotFound(t *testing.T) {
	_, err := NewMemoryRepo().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoCountAndHasReport(t *testing.T) {
	repo := NewMemoryRepo()
	seedChecks(t, repo, "u1", "Conforme", "CONFORME", "Non conforme")

	counts, err := repo.CountByResult(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"conforme": 2, "non conforme": 1}, counts)

	ok, err := repo.HasReport(context.Background(), "u1", "report_a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasReport(context.Background(), "u2", "report_a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryRepo().Create(ctx, Check{ID: "x"}), context.Canceled)
}
