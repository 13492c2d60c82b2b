package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stocksmarthub/backend/internal/domain"
)

// rowNumberOffset turns a data row index into its sheet row number; the header is row 1
const rowNumberOffset = 2

// Columns names the header cells the pipeline reads and writes
type Columns struct {
	ProductName string
	ProductCode string
	Image       string
}

// DefaultColumns matches the vendor master sheet export
var DefaultColumns = Columns{
	ProductName: "List of Items",
	ProductCode: "Crystal Part Code",
	Image:       "Photos",
}

// CSVDataset is the product sheet export: a CSV file whose data lines carry an
// "N|" sheet row number prefix. Rows are addressed by position only.
type CSVDataset struct {
	fs      billy.Filesystem
	name    string
	columns Columns
	backup  bool
	logger  *slog.Logger

	headers []string
	rows    [][]string
	dropped int
}

// OpenCSVDataset prepares the dataset at path on the local filesystem; call Load to read it
func OpenCSVDataset(path string, columns Columns, backup bool, logger *slog.Logger) (*CSVDataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset path %s: %w", path, err)
	}
	return NewCSVDataset(osfs.New(filepath.Dir(abs)), filepath.Base(abs), columns, backup, logger), nil
}

// NewCSVDataset prepares the dataset stored as name on fs
func NewCSVDataset(fs billy.Filesystem, name string, columns Columns, backup bool, logger *slog.Logger) *CSVDataset {
	return &CSVDataset{
		fs:      fs,
		name:    name,
		columns: columns,
		backup:  backup,
		logger:  logger,
	}
}

// Load reads the file, strips row number prefixes and drops every row whose
// length differs from the header
func (d *CSVDataset) Load(ctx context.Context) error {
	f, err := d.fs.Open(d.name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDatasetLoad, d.name, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDatasetLoad, d.name, err)
	}

	headers, rows, dropped, err := parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrDatasetLoad, d.name, err)
	}

	d.headers = headers
	d.rows = rows
	d.dropped = dropped

	d.logger.InfoContext(ctx, "dataset loaded", "file", d.name, "rows", len(rows), "dropped", dropped)
	return nil
}

func parse(raw []byte) ([]string, [][]string, int, error) {
	text := strings.TrimSpace(strings.ReplaceAll(string(raw), "\r\n", "\n"))
	if text == "" {
		return nil, nil, 0, errors.New("dataset is empty")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripRowNumber(line)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, 0, err
	}
	if len(records) == 0 {
		return nil, nil, 0, errors.New("dataset has no header row")
	}

	headers := records[0]
	rows := make([][]string, 0, len(records)-1)
	dropped := 0
	for _, record := range records[1:] {
		if len(record) != len(headers) {
			dropped++
			continue
		}
		rows = append(rows, record)
	}
	return headers, rows, dropped, nil
}

// stripRowNumber removes a leading "N|" sheet row number
func stripRowNumber(line string) string {
	idx := strings.IndexByte(line, '|')
	if idx <= 0 {
		return line
	}
	prefix := strings.TrimSpace(line[:idx])
	if prefix == "" {
		return line
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return line
		}
	}
	return line[idx+1:]
}

// Len returns the number of rows kept at load
func (d *CSVDataset) Len() int {
	return len(d.rows)
}

// Dropped returns the number of malformed rows skipped at load
func (d *CSVDataset) Dropped() int {
	return d.dropped
}

// header returns a copy of the header row
func (d *CSVDataset) header() []string {
	return append([]string(nil), d.headers...)
}

// row returns a copy of the row at index
func (d *CSVDataset) row(index int) ([]string, error) {
	if index < 0 || index >= len(d.rows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrRowOutOfRange, index)
	}
	return append([]string(nil), d.rows[index]...), nil
}

func (d *CSVDataset) column(name string) (int, error) {
	for i, h := range d.headers {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, name)
}

type columnIndexes struct {
	name, code, image int
}

func (d *CSVDataset) indexes() (columnIndexes, error) {
	var idx columnIndexes
	var err error
	if idx.name, err = d.column(d.columns.ProductName); err != nil {
		return idx, err
	}
	if idx.code, err = d.column(d.columns.ProductCode); err != nil {
		return idx, err
	}
	if idx.image, err = d.column(d.columns.Image); err != nil {
		return idx, err
	}
	return idx, nil
}

// ProductsWithoutImages lists rows that have a product name and an empty image cell
func (d *CSVDataset) ProductsWithoutImages() ([]domain.PendingProduct, error) {
	idx, err := d.indexes()
	if err != nil {
		return nil, err
	}

	var pending []domain.PendingProduct
	for i, row := range d.rows {
		name := strings.TrimSpace(row[idx.name])
		if name == "" || strings.TrimSpace(row[idx.image]) != "" {
			continue
		}
		pending = append(pending, domain.PendingProduct{
			RowIndex:    i,
			ProductCode: strings.TrimSpace(row[idx.code]),
			ProductName: name,
		})
	}
	return pending, nil
}

// ProductsWithImages lists rows that have both a product code and an image reference
func (d *CSVDataset) ProductsWithImages() ([]domain.AssignedImage, error) {
	idx, err := d.indexes()
	if err != nil {
		return nil, err
	}

	var assigned []domain.AssignedImage
	for i, row := range d.rows {
		code := strings.TrimSpace(row[idx.code])
		image := strings.TrimSpace(row[idx.image])
		if code == "" || image == "" {
			continue
		}
		assigned = append(assigned, domain.AssignedImage{
			RowIndex:    i,
			ProductCode: code,
			ImageURL:    image,
		})
	}
	return assigned, nil
}

// SetImageURL overwrites the image cell of the row at rowIndex in memory
func (d *CSVDataset) SetImageURL(rowIndex int, imageURL string) error {
	idx, err := d.column(d.columns.Image)
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(d.rows) {
		return fmt.Errorf("%w: %d", domain.ErrRowOutOfRange, rowIndex)
	}
	d.rows[rowIndex][idx] = imageURL
	return nil
}

// Save copies the current file to <name>.backup (when enabled) and then
// atomically replaces it with the in-memory rows
func (d *CSVDataset) Save(ctx context.Context) error {
	if d.headers == nil {
		return errors.New("dataset not loaded")
	}

	if d.backup {
		if err := d.copyToBackup(); err != nil {
			return err
		}
	}

	raw, err := d.encode()
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := d.replace(raw); err != nil {
		return err
	}

	d.logger.InfoContext(ctx, "dataset saved", "file", d.name, "rows", len(d.rows))
	return nil
}

func (d *CSVDataset) encode() ([]byte, error) {
	var out, line bytes.Buffer
	w := csv.NewWriter(&line)

	if err := w.Write(d.headers); err != nil {
		return nil, err
	}
	w.Flush()
	out.Write(line.Bytes())

	for i, row := range d.rows {
		line.Reset()
		if err := w.Write(row); err != nil {
			return nil, err
		}
		w.Flush()
		fmt.Fprintf(&out, "%d|", i+rowNumberOffset)
		out.Write(line.Bytes())
	}
	return out.Bytes(), w.Error()
}

func (d *CSVDataset) backupName() string {
	return d.name + ".backup"
}

func (d *CSVDataset) copyToBackup() error {
	src, err := d.fs.Open(d.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open dataset for backup: %w", err)
	}
	defer src.Close()

	dst, err := d.fs.Create(d.backupName())
	if err != nil {
		return fmt.Errorf("failed to create dataset backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write dataset backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to write dataset backup: %w", err)
	}

	d.logger.Info("dataset backup created", "file", d.backupName())
	return nil
}

func (d *CSVDataset) replace(raw []byte) error {
	tmp, err := d.fs.TempFile(filepath.Dir(d.name), ".dataset-")
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		d.fs.Remove(tmpName)
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		d.fs.Remove(tmpName)
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := d.fs.Rename(tmpName, d.name); err != nil {
		d.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace dataset %s: %w", d.name, err)
	}
	return nil
}

var _ domain.ProductDataset = (*CSVDataset)(nil)
