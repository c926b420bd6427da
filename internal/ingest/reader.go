package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"credit-approval/internal/pkg/apperrors"

	"github.com/xuri/excelize/v2"
)

// readRows opens a workbook and returns the data rows of its first sheet,
// header excluded. An unreadable file is an IngestionFileError: the job
// fails before any row is processed.
func readRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIngestionFile, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", apperrors.ErrIngestionFile, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIngestionFile, path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloatCell(row []string, idx int, field string) (float64, error) {
	raw := cell(row, idx)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s '%s': %w", field, raw, err)
	}
	return v, nil
}

func parseIntCell(row []string, idx int, field string) (int, error) {
	raw := cell(row, idx)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s '%s': %w", field, raw, err)
	}
	return v, nil
}

var dateLayouts = []string{"2006-01-02", "01-02-06", "1/2/2006", "2006/01/02"}

func parseDateCell(row []string, idx int, field string) (time.Time, error) {
	raw := cell(row, idx)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse %s '%s'", field, raw)
}
