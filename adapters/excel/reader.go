package excel

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"figstats/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *zap.Logger
}

// Option configures a DataReader
type Option func(*DataReader)

// WithSheet selects a worksheet by name; the first sheet is used otherwise
func WithSheet(name string) Option {
	return func(r *DataReader) { r.sheet = name }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(r *DataReader) { r.logger = l }
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts ...Option) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" || ext == ".txt" {
		fileType = "csv"
	}
	r := &DataReader{filePath: filePath, fileType: fileType, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading data file", zap.String("type", r.fileType), zap.String("path", r.filePath))

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.Newf(errors.CodeInvalidInput, "%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unsupported file type: %s", r.fileType)
	}
}

// ReadSample reads the named column, or the first numeric column when
// column is empty
func (r *DataReader) ReadSample(column string) ([]float64, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return data.Column(column)
}

// readExcelData reads the selected sheet into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read %s", sheet)
	}
	r.logger.Debug("sheet read",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(startTime)))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("Excel file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV file")
	}
	r.logger.Debug("csv read", zap.Int("rows", len(rows)), zap.Duration("elapsed", time.Since(readStart)))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("file processed",
		zap.String("type", r.fileType),
		zap.Int("columns", len(headers)),
		zap.Int("rows", len(dataRows)))

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// Column parses one column as numbers. Missing cells become NaN. With an
// empty name the first column whose non-missing cells all parse is used.
func (d *ExcelData) Column(name string) ([]float64, error) {
	if name == "" {
		for _, h := range d.Headers {
			if values, err := d.parseColumn(h); err == nil && hasValue(values) {
				return values, nil
			}
		}
		return nil, errors.InvalidInput("no numeric column found")
	}
	for _, h := range d.Headers {
		if h == name {
			return d.parseColumn(h)
		}
	}
	return nil, errors.Newf(errors.CodeInvalidInput, "column %q not found", name)
}

func (d *ExcelData) parseColumn(header string) ([]float64, error) {
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		v, err := ParseValue(row[header])
		if err != nil {
			return nil, errors.Wrapf(err, "column %q row %d", header, i+2)
		}
		out[i] = v
	}
	return out, nil
}

func hasValue(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ParseValue parses one cell. Empty cells and the usual missing-value
// markers (NA, NaN, null, ".") give NaN.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "n/a", ".":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Newf(errors.CodeInvalidInput, "%q is not a number", s)
	}
	return v, nil
}

// ReadLines parses newline-separated numbers. Blank lines are missing
// values; lines starting with '#' are skipped.
func ReadLines(in io.Reader) ([]float64, error) {
	var out []float64
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(text, "#") {
			continue
		}
		v, err := ParseValue(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read input")
	}
	return out, nil
}

// LineSource serves ReadLines input through the same interface as a file
// reader. The column name is ignored.
type LineSource struct {
	in io.Reader
}

// NewLineSource wraps a reader of newline-separated numbers
func NewLineSource(in io.Reader) *LineSource {
	return &LineSource{in: in}
}

// ReadSample parses every line of the underlying reader
func (s *LineSource) ReadSample(string) ([]float64, error) {
	return ReadLines(s.in)
}
