package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkcontrat-backend/internal/analysis"
	"checkcontrat-backend/internal/extract"
	localstore "checkcontrat-backend/internal/shared/storage/object/local"
)

var filenamePattern = regexp.MustCompile(`^report_[A-Za-z0-9_-]{11}\.pdf$`)

func TestRenderWritesPDFToOutputArea(t *testing.T) {
	dir := t.TempDir()
	r := New(localstore.New(dir), time.UTC)
	r.Now = func() time.Time { return time.Date(2026, time.October, 14, 9, 5, 0, 0, time.UTC) }

	name, err := r.Render(context.Background(), analysis.NewResult("Conforme", "Ligne un\nLigne deux"))
	require.NoError(t, err)
	assert.Regexp(t, filenamePattern, name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "expected a PDF header")

	text, err := extract.ExtractBytes(data, ".pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "CheckTonContrat")
	assert.Contains(t, text, "Conforme")
	assert.Contains(t, text, "Ligne deux")
}

func TestRenderDefaultsMissingFields(t *testing.T) {
	data, err := RenderPDF(analysis.Result{}, time.Date(2026, time.January, 2, 15, 4, 0, 0, time.UTC))
	require.NoError(t, err)

	text, err := extract.ExtractBytes(data, ".pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Non conforme")
	assert.Contains(t, text, "Aucun d")
}

func TestFilenamesAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		name, err := NewFilename()
		require.NoError(t, err)
		require.Regexp(t, filenamePattern, name)
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate filename %s after %d draws", name, i)
		}
		seen[name] = struct{}{}
	}
}

func TestIsPass(t *testing.T) {
	assert.True(t, IsPass("Conforme"))
	assert.True(t, IsPass("globalement CONFORME"))
	assert.False(t, IsPass("Non conforme"))
	assert.False(t, IsPass("non-conforme"))
	assert.False(t, IsPass(""))
	assert.False(t, IsPass("Incertain"))
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2026, time.October, 4, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Généré le 04/10/2026 à 09:05", Timestamp(ts))
}

func TestRenderUsesConfiguredLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	r := &Renderer{
		Location: paris,
		Now:      func() time.Time { return time.Date(2026, time.July, 1, 10, 0, 0, 0, time.UTC) },
	}
	assert.Equal(t, 12, r.now().Hour())
}

type failingSaver struct{}

func (failingSaver) SaveWithKey(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func TestRenderStorageFailureIsRenderError(t *testing.T) {
	r := New(failingSaver{}, time.UTC)
	name, err := r.Render(context.Background(), analysis.NewResult("Conforme", "ok"))
	assert.Empty(t, name)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr), "got %v", err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}

func TestRenderTokenFailureIsRenderError(t *testing.T) {
	dir := t.TempDir()
	r := New(localstore.New(dir), time.UTC)
	r.NewToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := r.Render(context.Background(), analysis.NewResult("Conforme", "ok"))
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "no artifact is left behind")
}
