package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSourceMissing is returned when a source file does not exist.
	ErrSourceMissing = errors.New("source file not found")

	// ErrUnsupportedFormat is returned for spreadsheet formats that cannot be read.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ReadTable reads a header row and data rows from a CSV or spreadsheet file.
// Spreadsheets are read from their first sheet. Any other extension is read
// as UTF-8 CSV, with or without a byte-order mark.
func ReadTable(path string) (headers []string, rows [][]string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readSpreadsheet(path)
	case ".xls":
		return nil, nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, openError(path, err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	return splitHeader(records)
}

func readSpreadsheet(path string) ([]string, [][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, openError(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q of %s: %w", sheets[0], path, err)
	}
	return splitHeader(records)
}

// splitHeader separates the header row and drops rows with no content.
func splitHeader(records [][]string) ([]string, [][]string, error) {
	if len(records) == 0 {
		return nil, nil, nil
	}
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return records[0], rows, nil
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrSourceMissing)
	}
	return fmt.Errorf("read %s: %w", path, err)
}
