// Package dataset reads raw diet tables and locates them in their source
// container.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/persistorai/dietinsights/internal/models"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	zipMIME  = "application/zip"
)

// maxDatasetBytes caps how much of a source is read into memory.
const maxDatasetBytes = 256 << 20

// ReadTable reads a CSV or XLSX dataset. The first non-empty row is the
// header. name is only used as a format hint.
func ReadTable(r io.Reader, name string) (*models.RawTable, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	if len(data) > maxDatasetBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDatasetBytes)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, models.ErrEmptyDataset
	}

	switch format := detectFormat(data, name); format {
	case "xlsx":
		return readXLSX(data)
	case "csv":
		return readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format)
	}
}

// detectFormat returns "xlsx", "csv" or the detected MIME type.
func detectFormat(data []byte, name string) string {
	mt := mimetype.Detect(data)
	if mt.Is(xlsxMIME) {
		return "xlsx"
	}

	if mt.Is(zipMIME) && strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return "xlsx"
	}

	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return "csv"
		}
	}

	return mt.String()
}

func readCSV(data []byte) (*models.RawTable, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	return splitHeader(records)
}

func readXLSX(data []byte) (*models.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rows) > 0 {
			return splitHeader(rows)
		}
	}

	return nil, models.ErrEmptyDataset
}

func splitHeader(records [][]string) (*models.RawTable, error) {
	for i, rec := range records {
		if isEmptyRecord(rec) {
			continue
		}
		return &models.RawTable{Headers: rec, Rows: records[i+1:]}, nil
	}
	return nil, models.ErrEmptyDataset
}

func isEmptyRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
