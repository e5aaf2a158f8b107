package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyDataset is returned for a file without a header or without rows.
	ErrEmptyDataset = errors.New("dataset is empty or improperly formatted")
	// ErrTargetNotFound is returned when the target column is not in the header.
	ErrTargetNotFound = errors.New("target column not found")
)

// LoadOptions controls file reading.
type LoadOptions struct {
	// Delimiter for CSV. If 0, chosen from the file extension (.tsv -> tab, else comma).
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects the worksheet of an .xlsx file; empty means the first one.
	Sheet string
}

// Frame is a raw table: a header and string records padded to header width.
type Frame struct {
	Name    string
	Header  []string
	Records [][]string
}

// Load reads a delimited text file or an .xlsx workbook with a header row.
func Load(path string, opt LoadOptions) (*Frame, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return Read(f, filepath.Base(path), delim, opt.MaxRows)
}

// Read parses CSV content from r. Short records are padded and long ones truncated
// to the header width.
func Read(r io.Reader, name string, delim rune, maxRows int) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if delim != 0 {
		cr.Comma = delim
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no header", ErrEmptyDataset, name)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	fr := newFrame(name, header)
	for {
		if maxRows > 0 && len(fr.Records) >= maxRows {
			break
		}
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(fr.Records)+1, err)
		}
		fr.add(rec)
	}
	return fr, nil
}

func newFrame(name string, header []string) *Frame {
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return &Frame{Name: name, Header: header}
}

// add appends rec resized to the header width. Blank records are skipped.
func (f *Frame) add(rec []string) {
	if isBlank(rec) {
		return
	}
	row := make([]string, len(f.Header))
	copy(row, rec)
	f.Records = append(f.Records, row)
}

// Index returns the position of a column name, or -1.
func (f *Frame) Index(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Values returns the raw values of one column.
func (f *Frame) Values(name string) ([]string, error) {
	idx := f.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
	}
	out := make([]string, len(f.Records))
	for i, rec := range f.Records {
		out[i] = rec[idx]
	}
	return out, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseDelimiter maps a flag value (",", ";", "tab") to a delimiter rune; "" means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q", s)
	}
}
