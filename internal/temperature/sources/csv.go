package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/temperature-dashboard/internal/common"
	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyDocument is returned when the document has no header row.
	ErrEmptyDocument = errors.New("empty csv document")
)

// ParseCSV reads a header-keyed CSV document into raw rows. Rows may be
// ragged; missing trailing cells read as empty strings and surplus cells are
// dropped. Blank lines are skipped. Quotes inside unquoted cells are kept
// literally, and a line the reader cannot tokenize is skipped; cell content is
// judged by the validator, not here.
func ParseCSV(r io.Reader) ([]temperature.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = common.NormalizeHeader(h)
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}

	var rows []temperature.RawRow
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := make(temperature.RawRow, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func checkColumns(header []string) error {
	var missing []string
	for _, col := range temperature.RequiredColumns {
		if !common.HasAny(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
