// Package table reads and writes the tabular input of a ranking run.
// The first column of a table identifies the row; every other column is a
// numeric criterion.
package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/topsis"
)

// MinColumns is the identifier column plus at least two criteria.
const MinColumns = 3

var (
	ErrEmptyTable     = errors.New("table: empty input")
	ErrTooFewColumns  = fmt.Errorf("table: input must contain %d or more columns", MinColumns)
	ErrNoRows         = errors.New("table: input has a header but no data rows")
	ErrMalformedTable = errors.New("table: malformed csv")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvParser implements the interfaces.TableParser interface.
type csvParser struct{}

// NewParser creates a TableParser for comma-separated input with a header row.
func NewParser() interfaces.TableParser {
	return &csvParser{}
}

func (p *csvParser) Parse(ctx context.Context, r io.Reader) (*interfaces.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("table: reading input: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyTable
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if len(header) < MinColumns {
		return nil, ErrTooFewColumns
	}

	t := &interfaces.Table{Header: trimAll(header)}
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("table: parsing cancelled: %w", ctx.Err())
		default:
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ErrFieldCount and friends: the reader enforces the header width.
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		t.Rows = append(t.Rows, record)
	}

	if len(t.Rows) == 0 {
		return nil, ErrNoRows
	}
	return t, nil
}

func (p *csvParser) ParseFile(ctx context.Context, path string) (*interfaces.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: opening %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

// Matrix converts the criterion columns of t into a decision matrix.
// A cell that is not a finite number fails with topsis.ErrNonNumeric; the
// reported row and column are decision-matrix indices.
func Matrix(t *interfaces.Table) ([][]float64, error) {
	m := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		m[r] = make([]float64, len(row)-1)
		for c, cell := range row[1:] {
			v, err := ParseNumber(cell)
			if err != nil {
				return nil, topsis.NewInputError(topsis.ErrNonNumeric, r, c,
					fmt.Sprintf("%q in column %q", cell, columnName(t, c+1)))
			}
			m[r][c] = v
		}
	}
	return m, nil
}

// ParseNumber parses a single criterion cell.
func ParseNumber(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("table: %q is not finite", cell)
	}
	return v, nil
}

// Criteria returns the header names of the criterion columns.
func Criteria(t *interfaces.Table) []string {
	if len(t.Header) < 2 {
		return nil
	}
	return append([]string(nil), t.Header[1:]...)
}

// Write serializes a header and rows as CSV.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("table: writing header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("table: writing rows: %w", err)
	}
	return nil
}

func columnName(t *interfaces.Table, idx int) string {
	if idx < len(t.Header) {
		return t.Header[idx]
	}
	return strconv.Itoa(idx)
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
