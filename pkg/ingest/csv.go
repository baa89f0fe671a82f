package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CSVFormat describes the layout of a delimited input file.
type CSVFormat struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

// Sheet is a fully read delimited file. Empty cells are nil.
type Sheet struct {
	ID     string
	Path   string
	Header []string
	Rows   [][]*string
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Column returns the index of a header, or -1.
func (s *Sheet) Column(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func statFile(path string) (fs.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileError{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrMissingInput, err)}
		}
		return nil, &FileError{Op: "stat", Path: path, Err: err}
	}
	return fi, nil
}

// ReadCSV reads a whole delimited file with a header row. A UTF-8 BOM is
// skipped and non-UTF-8 encodings are transcoded.
func ReadCSV(path string, format CSVFormat) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileError{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrMissingInput, err)}
		}
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	sheet, err := readCSV(f, format)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	sheet.Path = path
	return sheet, nil
}

func readCSV(src io.Reader, format CSVFormat) (*Sheet, error) {
	var reader io.Reader = src
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(src, e.NewDecoder())
	}

	buf := bufio.NewReaderSize(reader, 256*1024)
	if bom, err := buf.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		buf.Discard(3)
	}

	r := csv.NewReader(buf)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	if d := format.Delimiter; d != "" {
		r.Comma = []rune(d)[0]
	}

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	sheet := &Sheet{Header: header}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		row := make([]*string, len(header))
		for i := 0; i < len(header) && i < len(record); i++ {
			if record[i] == "" {
				continue
			}
			v := record[i]
			row[i] = &v
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
