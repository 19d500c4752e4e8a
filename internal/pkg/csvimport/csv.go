// Package csvimport turns an uploaded student allotment CSV into rows.
//
// The first line is a header. Columns are matched by exact, case-sensitive
// name; unknown columns are ignored and missing ones read as empty.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Recognized header names
const (
	HeaderID          = "id"
	HeaderBranch      = "branch"
	HeaderYear        = "year"
	HeaderSemester    = "sem"
	HeaderSubject     = "sub"
	HeaderSubjectCode = "subjectcode"
	HeaderType        = "type"
	HeaderOClass      = "oclass"
)

// AllowedExtension is the only accepted upload extension (case-insensitive)
const AllowedExtension = ".csv"

var (
	ErrDecode    = errors.New("csv: contents could not be decoded")
	ErrMalformed = errors.New("csv: malformed file")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row holds the raw, untrimmed values of one data line
type Row struct {
	IDNo        string
	Branch      string
	Year        string
	Semester    string
	Subject     string
	SubjectCode string
	Type        string
	OClass      string
}

// AllowedFile reports whether filename carries the .csv extension
func AllowedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), AllowedExtension)
}

// Decode returns data as UTF-8 text with "\n" line endings. Valid UTF-8
// (with an optional BOM) is used as-is; anything else is decoded as
// ISO-8859-1. CRLF and lone CR both become LF.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		data = decoded
	}
	return normalizeNewlines(data), nil
}

// normalizeNewlines rewrites "\r\n" and then any remaining "\r" as "\n";
// encoding/csv splits records on "\n" only
func normalizeNewlines(data []byte) []byte {
	if bytes.IndexByte(data, '\r') < 0 {
		return data
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// Parse reads r to the end and returns every data row in file order. No row
// is returned unless the whole input parses.
func Parse(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csv: failed to read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes is Parse over an in-memory file
func ParseBytes(data []byte) ([]Row, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	columns := indexHeader(header)

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		rows = append(rows, columns.row(record))
	}

	return rows, nil
}

// columnIndex maps header name to position; a repeated name keeps the last one
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	columns := make(columnIndex, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

func (c columnIndex) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (c columnIndex) row(record []string) Row {
	return Row{
		IDNo:        c.get(record, HeaderID),
		Branch:      c.get(record, HeaderBranch),
		Year:        c.get(record, HeaderYear),
		Semester:    c.get(record, HeaderSemester),
		Subject:     c.get(record, HeaderSubject),
		SubjectCode: c.get(record, HeaderSubjectCode),
		Type:        c.get(record, HeaderType),
		OClass:      c.get(record, HeaderOClass),
	}
}
