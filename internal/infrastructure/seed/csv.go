package seed

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ProductCSVColumns lists the recognised product CSV headers. The first five
// are required.
var ProductCSVColumns = []string{
	"sku", "name", "category", "price", "stock",
	"description", "compare_price", "image_url", "inactive",
}

const (
	requiredProductColumns = 5
	encodingSampleSize      = 4096
)

// MaxCSVErrors caps how many row errors are reported for one file
const MaxCSVErrors = 50

var (
	// ErrEmptyCSV is returned for a file with no content
	ErrEmptyCSV = errors.New("csv file is empty")
	// ErrInvalidEncoding is returned when the file is not UTF-8
	ErrInvalidEncoding = errors.New("csv file must be UTF-8 encoded")
)

// RowError is a problem with one CSV line
type RowError struct {
	Line    int
	Column  string
	Message string
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d, column %s: %s", e.Line, e.Column, e.Message)
}

// LoadProductsCSV reads product rows from a CSV file
func LoadProductsCSV(path string) ([]ProductFixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open products csv: %w", err)
	}
	defer f.Close()
	return ParseProductsCSV(f)
}

// ParseProductsCSV reads product rows. A UTF-8 BOM is skipped, headers are
// matched case-insensitively and blank lines are ignored. Every invalid row is
// reported, up to MaxCSVErrors, as a joined error of RowError values.
func ParseProductsCSV(r io.Reader) ([]ProductFixture, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(3); len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	head, err := br.Peek(encodingSampleSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read products csv: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyCSV
	}
	if len(head) == encodingSampleSize {
		head = trimPartialRune(head)
	}
	if !utf8.Valid(head) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range ProductCSVColumns[:requiredProductColumns] {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("products csv is missing columns: %s", strings.Join(missing, ", "))
	}

	var (
		products []ProductFixture
		rowErrs  []error
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read products csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		get := func(column string) string {
			if i, ok := columns[column]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		if isBlank(record) {
			continue
		}

		p, errs := productFromRow(line, get)
		if len(errs) > 0 {
			for _, e := range errs {
				if len(rowErrs) < MaxCSVErrors {
					rowErrs = append(rowErrs, e)
				}
			}
			continue
		}
		products = append(products, p)
	}

	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}
	return products, nil
}

func productFromRow(line int, get func(string) string) (ProductFixture, []error) {
	var errs []error
	fail := func(column, msg string) {
		errs = append(errs, RowError{Line: line, Column: column, Message: msg})
	}

	p := ProductFixture{
		SKU:          get("sku"),
		Name:         get("name"),
		Category:     get("category"),
		Price:        get("price"),
		Description:  get("description"),
		ComparePrice: get("compare_price"),
	}
	for _, c := range []string{"sku", "name", "category", "price", "stock"} {
		if get(c) == "" {
			fail(c, "is required")
		}
	}
	if p.Price != "" {
		if d, err := decimal.NewFromString(p.Price); err != nil || d.IsNegative() {
			fail("price", fmt.Sprintf("%q is not a valid amount", p.Price))
		}
	}
	if p.ComparePrice != "" {
		if _, err := decimal.NewFromString(p.ComparePrice); err != nil {
			fail("compare_price", fmt.Sprintf("%q is not a valid amount", p.ComparePrice))
		}
	}
	if s := get("stock"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fail("stock", fmt.Sprintf("%q is not a whole number of units", s))
		}
		p.Stock = n
	}
	if s := get("inactive"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			fail("inactive", fmt.Sprintf("%q is not true or false", s))
		}
		p.Inactive = b
	}
	if url := get("image_url"); url != "" {
		p.Images = []ImageFixture{{URL: url, Alt: p.Name, Primary: true}}
	}
	return p, errs
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// trimPartialRune drops a multi-byte rune cut off by the peek window
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
