package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"checkcontrat-backend/internal/shared/telemetry"
)

const exportSheet = "Analyses"

// ExportXLSX returns a workbook listing every check of userID, newest first.
func (s *Service) ExportXLSX(ctx context.Context, userID string) ([]byte, error) {
	start := time.Now()
	checks, err := s.Repo.ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(exportSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"ID", "Module", "Fichiers", "Résultat", "Rapport", "Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, c := range checks {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
		write(1, c.ID)
		write(2, c.Module)
		write(3, strings.Join(c.InputFiles, ", "))
		write(4, c.Result)
		write(5, c.OutputFile)
		write(6, c.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "B", 10)
	_ = f.SetColWidth(exportSheet, "C", "C", 60)
	_ = f.SetColWidth(exportSheet, "D", "D", 16)
	_ = f.SetColWidth(exportSheet, "E", "E", 28)
	_ = f.SetColWidth(exportSheet, "F", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	telemetry.Info("checks.export.ok", map[string]any{
		"user_id":    userID,
		"rows":       len(checks),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return buf.Bytes(), nil
}
