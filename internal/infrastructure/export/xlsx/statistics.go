package xlsx

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/health-assistant/internal/core/domain"
)

const (
	SummarySheet    = "Summary"
	CategoriesSheet = "Categories"
)

// WriteStatistics renders corpus statistics as a workbook with a summary
// sheet and one row per category, sorted by category name.
func WriteStatistics(w io.Writer, stats domain.Statistics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Total documents", stats.TotalDocs},
		{"Sources", len(stats.Sources)},
		{"Source list", strings.Join(stats.Sources, ", ")},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(CategoriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	names := make([]string, 0, len(stats.Categories))
	for name := range stats.Categories {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]any, 0, len(names)+1)
	rows = append(rows, []any{"Category", "Documents"})
	for _, name := range names {
		rows = append(rows, []any{name, stats.Categories[name]})
	}
	if err := writeRows(f, CategoriesSheet, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
