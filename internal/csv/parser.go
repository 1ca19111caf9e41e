package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/models"

	"github.com/jszwec/csvutil"
)

const utf8BOM = "\ufeff"

// supportedExtensions lists the tabular formats the parser accepts.
var supportedExtensions = map[string]bool{
	".csv": true,
}

type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

// CheckExtension rejects files the parser cannot read without opening them.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %q", rdrerrors.ErrUnsupportedExtension, filepath.Base(filename))
	}
	return nil
}

// ParseTable reads the whole file into memory as a Table.
func (p *Parser) ParseTable() (*models.Table, error) {
	if err := CheckExtension(p.filename); err != nil {
		return nil, err
	}

	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat CSV file: %w", err)
	}
	if stat.Size() == 0 {
		return nil, rdrerrors.ErrEmptyFile
	}

	return Decode(p.filename, file)
}

// Decode reads a metadata table from r. name is recorded as the table path.
func Decode(name string, r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	decoder, err := csvutil.NewDecoder(&padReader{r: reader})
	if err == io.EOF {
		return nil, rdrerrors.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	header := decoder.Header()
	columns := make([]string, len(header))
	copy(columns, header)

	var records []models.Record
	if err := decoder.Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	return &models.Table{
		Path:    name,
		Columns: columns,
		Records: records,
	}, nil
}

// padReader fills rows that stop short of the header with empty cells, so
// trailing columns left off a row read as missing. Rows longer than the
// header pass through and fail in the decoder.
type padReader struct {
	r     csvutil.Reader
	width int
}

func (p *padReader) Read() ([]string, error) {
	record, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	if p.width == 0 {
		p.width = len(record)
		return record, nil
	}
	for len(record) < p.width {
		record = append(record, "")
	}
	return record, nil
}

// skipBOM drops the byte order mark spreadsheet exports put before the header.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		br.Discard(len(utf8BOM))
	}
	return br
}
