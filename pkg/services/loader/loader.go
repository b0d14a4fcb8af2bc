package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Options struct {
	Source string
	Comma  rune
}

func DefaultOptions() Options {
	return Options{Comma: ','}
}

// Load reads a delimited POS export with a header row into a typed table.
// The input is consumed once. Any failure yields a *LoadError and no table.
func Load(r io.Reader, opt Options) (*domain.Table, error) {
	if opt.Comma == 0 {
		opt.Comma = ','
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("read input: %w", err)}
	}

	text, err := decode(raw)
	if err != nil {
		return nil, &LoadError{Kind: KindEncoding, Err: err}
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = opt.Comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Kind: KindEmpty, Err: errors.New("input has no header row")}
	}
	if err != nil {
		return nil, &LoadError{Kind: KindMalformed, Err: fmt.Errorf("read header: %w", err)}
	}

	colIx, err := indexColumns(hdr)
	if err != nil {
		return nil, err
	}

	table := &domain.Table{Source: opt.Source, Rows: make([]domain.LineItem, 0)}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Kind: KindMalformed, Row: row, Err: err}
		}
		if isBlank(rec) {
			continue
		}

		item, err := parseRow(rec, colIx, row)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, item)
	}

	return table, nil
}

// decode strips a byte-order mark and converts UTF-16 input to UTF-8. Input
// without a UTF-16 BOM must already be valid UTF-8.
func decode(raw []byte) ([]byte, error) {
	if !hasUTF16BOM(raw) && !utf8.Valid(raw) {
		return nil, ErrInvalidUTF8
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return text, nil
}

func hasUTF16BOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE))
}

func indexColumns(hdr []string) (map[string]int, error) {
	srcToIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		name := normalizeHeader(h)
		if _, dup := srcToIdx[name]; !dup {
			srcToIdx[name] = i
		}
	}

	colIx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		si, ok := srcToIdx[col]
		if !ok {
			return nil, &LoadError{Kind: KindMissingColumn, Column: col, Err: errors.New("required column not found")}
		}
		colIx[col] = si
	}
	return colIx, nil
}

type rowReader struct {
	rec   []string
	colIx map[string]int
	row   int
	err   error
}

func (r *rowReader) cell(col string) string {
	si := r.colIx[col]
	if si >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[si])
}

func (r *rowReader) fail(col string, err error) {
	if r.err == nil {
		r.err = &LoadError{Kind: KindBadCell, Column: col, Row: r.row, Err: err}
	}
}

func (r *rowReader) text(col string) string {
	v := r.cell(col)
	if v == "" {
		r.fail(col, errors.New("empty value"))
	}
	return v
}

func (r *rowReader) number(col string) float64 {
	v := r.cell(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(col, fmt.Errorf("not a number: %q", v))
		return 0
	}
	return f
}

func (r *rowReader) integer(col string) int64 {
	v := r.cell(col)
	n, err := parseInt(v)
	if err != nil {
		r.fail(col, err)
	}
	return n
}

// code reads an optional categorical code; blank cells become 0, which no
// label table maps.
func (r *rowReader) code(col string) int {
	if r.cell(col) == "" {
		return 0
	}
	return int(r.integer(col))
}

func parseRow(rec []string, colIx map[string]int, row int) (domain.LineItem, error) {
	r := &rowReader{rec: rec, colIx: colIx, row: row}

	item := domain.LineItem{
		ReceiptID:    r.text(ColReceiptID),
		ItemName:     r.text(ColItemName),
		CategoryName: r.text(ColCategoryName),
		Price:        r.number(ColPrice),
		Quantity:     r.integer(ColQuantity),
		Year:         int(r.integer(ColYear)),
		Month:        int(r.integer(ColMonth)),
		Day:          int(r.integer(ColDay)),
		Hour:         int(r.integer(ColHour)),
		Minute:       int(r.integer(ColMinute)),
		Second:       int(r.integer(ColSecond)),
		WeekdayCode:  int(r.integer(ColWeekdayCode)),
		GenderCode:   r.code(ColGenderCode),
		AgeCode:      r.code(ColAgeCode),
	}
	if r.err != nil {
		return domain.LineItem{}, r.err
	}
	return item, nil
}

// parseInt accepts plain integers and integral decimals such as "12.0",
// which spreadsheet tools emit for numeric columns.
func parseInt(v string) (int64, error) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer: %q", v)
	}
	return int64(f), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
