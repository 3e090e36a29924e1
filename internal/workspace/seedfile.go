package workspace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/mazo/internal/entities"
)

// ErrUnsupportedSeedFile is returned for seed files that are neither .xlsx nor .csv.
var ErrUnsupportedSeedFile = errors.New("unsupported seed file format")

// LoadSeedFile reads catalog words from the first sheet of an .xlsx workbook
// or from a .csv file. Columns are located by a header row naming sourceText
// and targetText (and optionally id); without one, the first two columns are
// used and the first row is skipped.
func LoadSeedFile(path string) ([]entities.MasterWord, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readWorkbook(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedSeedFile)
	}
	if err != nil {
		return nil, err
	}
	return parseSeedRows(rows), nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open seed workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read seed workbook: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseSeedRows(rows [][]string) []entities.MasterWord {
	if len(rows) == 0 {
		return nil
	}
	idCol, srcCol, dstCol := -1, 0, 1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idCol = i
		case "sourcetext", "source":
			srcCol = i
		case "targettext", "target":
			dstCol = i
		}
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var words []entities.MasterWord
	for _, row := range rows[1:] {
		w := entities.MasterWord{
			ID:         cell(row, idCol),
			SourceText: cell(row, srcCol),
			TargetText: cell(row, dstCol),
		}
		if w.SourceText == "" || w.TargetText == "" {
			continue
		}
		words = append(words, w)
	}
	return words
}
