package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	filenamePrefix = "roachag_blog_posts"
	sheetName      = "Sheet1"
)

// Filenames returns the timestamped artifact paths for a run. The timestamp
// keeps reruns from colliding with a file an operator still has open in a
// spreadsheet program.
func Filenames(dir string, now time.Time) (xlsxPath, csvPath string) {
	ts := now.Format("20060102_150405")
	xlsxPath = filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", filenamePrefix, ts))
	csvPath = filepath.Join(dir, fmt.Sprintf("%s_%s.csv", filenamePrefix, ts))
	return xlsxPath, csvPath
}

// WriteCSV writes the header and all records to path. Any failure is fatal
// to the run; there is no partial-write recovery.
func WriteCSV(path string, records []PostRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.SourceURL, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes the header and all records to a single-sheet workbook at
// path.
func WriteXLSX(path string, records []PostRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write spreadsheet header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		cells := r.Row()
		row := make([]any, len(cells))
		for j, v := range cells {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write spreadsheet row for %s: %w", r.SourceURL, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
