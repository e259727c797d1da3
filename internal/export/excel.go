package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"leadscout-engine/internal/domain"
)

const sheetName = "Job Leads"

// WriteXLSX writes the same schema as WriteCSV as an Excel workbook, for
// enrichment passes done in Excel instead of a CSV editor.
func WriteXLSX(postings []domain.JobPosting, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for rowIdx, p := range postings {
		for colIdx, v := range row(p) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// XLSXPath names a timestamped workbook under dir.
func XLSXPath(dir string, ts time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("job_leads_%s.xlsx", ts.Format("20060102_150405")))
}
