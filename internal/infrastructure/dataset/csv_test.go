package dataset

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetExport = `1|Crystal Part Code,List of Items,Group Name,Photos
2|CP-001,TK-481 (Daikin) Compressor Motor,Thermo King,
3|CP-002,Door Seal Kit,Carrier,https://img.example.com/door.png
4|CP-003,Short Row
5|CP-004,"Pressure Switch, HP",Daikin,
6|CP-005,,Daikin,
`

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	f, err := fs.Create(name)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	f, err := fs.Open(name)
	require.NoError(t, err)
	defer f.Close()
	raw, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(raw)
}

func loadSheet(t *testing.T, content string, backup bool) (*CSVDataset, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	writeFile(t, fs, "sheet.csv", content)

	d := NewCSVDataset(fs, "sheet.csv", DefaultColumns, backup, telemetry.DiscardLogger())
	require.NoError(t, d.Load(context.Background()))
	return d, fs
}

func TestCSVDataset_LoadStripsRowNumbersAndDropsShortRows(t *testing.T) {
	d, _ := loadSheet(t, sheetExport, false)

	assert.Equal(t, []string{"Crystal Part Code", "List of Items", "Group Name", "Photos"}, d.header())
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 1, d.Dropped())

	row, err := d.row(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"CP-004", "Pressure Switch, HP", "Daikin", ""}, row)
}

func TestCSVDataset_LoadWithoutRowNumbers(t *testing.T) {
	d, _ := loadSheet(t, "Crystal Part Code,List of Items,Photos\r\nCP-1,Valve,\r\n", false)

	assert.Equal(t, 1, d.Len())
}

func TestCSVDataset_KeepsPipesThatAreNotRowNumbers(t *testing.T) {
	d, _ := loadSheet(t, "Crystal Part Code,List of Items,Photos\nCP-1,Valve A|B,\n", false)

	row, err := d.row(0)
	require.NoError(t, err)
	assert.Equal(t, "Valve A|B", row[1])
}

func TestCSVDataset_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		d := NewCSVDataset(memfs.New(), "nope.csv", DefaultColumns, false, telemetry.DiscardLogger())
		err := d.Load(context.Background())
		assert.True(t, errors.Is(err, domain.ErrDatasetLoad))
	})

	t.Run("empty file", func(t *testing.T) {
		fs := memfs.New()
		writeFile(t, fs, "empty.csv", "  \n")
		d := NewCSVDataset(fs, "empty.csv", DefaultColumns, false, telemetry.DiscardLogger())
		err := d.Load(context.Background())
		assert.True(t, errors.Is(err, domain.ErrDatasetLoad))
	})
}

func TestCSVDataset_ProductsWithoutImages(t *testing.T) {
	d, _ := loadSheet(t, sheetExport, false)

	pending, err := d.ProductsWithoutImages()

	require.NoError(t, err)
	assert.Equal(t, []domain.PendingProduct{
		{RowIndex: 0, ProductCode: "CP-001", ProductName: "TK-481 (Daikin) Compressor Motor"},
		{RowIndex: 2, ProductCode: "CP-004", ProductName: "Pressure Switch, HP"},
	}, pending)

	for _, p := range pending {
		assert.NotEqual(t, "CP-003", p.ProductCode, "malformed row must never be offered")
	}
}

func TestCSVDataset_ProductsWithImages(t *testing.T) {
	d, _ := loadSheet(t, sheetExport, false)

	assigned, err := d.ProductsWithImages()

	require.NoError(t, err)
	assert.Equal(t, []domain.AssignedImage{
		{RowIndex: 1, ProductCode: "CP-002", ImageURL: "https://img.example.com/door.png"},
	}, assigned)
}

func TestCSVDataset_MissingColumn(t *testing.T) {
	d, _ := loadSheet(t, "Crystal Part Code,List of Items\nCP-1,Valve\n", false)

	_, err := d.ProductsWithoutImages()
	assert.True(t, errors.Is(err, domain.ErrColumnNotFound))

	err = d.SetImageURL(0, "x")
	assert.True(t, errors.Is(err, domain.ErrColumnNotFound))
}

func TestCSVDataset_SetImageURL(t *testing.T) {
	d, _ := loadSheet(t, sheetExport, false)

	require.NoError(t, d.SetImageURL(0, "https://img.example.com/motor.png"))
	row, _ := d.row(0)
	assert.Equal(t, "https://img.example.com/motor.png", row[3])

	// idempotent overwrite
	require.NoError(t, d.SetImageURL(0, "https://img.example.com/motor.png"))

	assert.True(t, errors.Is(d.SetImageURL(-1, "x"), domain.ErrRowOutOfRange))
	assert.True(t, errors.Is(d.SetImageURL(d.Len(), "x"), domain.ErrRowOutOfRange))
}

func TestCSVDataset_SaveRoundTrip(t *testing.T) {
	d, fs := loadSheet(t, sheetExport, false)
	ctx := context.Background()

	require.NoError(t, d.Save(ctx))

	reloaded := NewCSVDataset(fs, "sheet.csv", DefaultColumns, false, telemetry.DiscardLogger())
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, d.header(), reloaded.header())
	assert.Equal(t, d.Len(), reloaded.Len())
	assert.Equal(t, 0, reloaded.Dropped())
	for i := 0; i < d.Len(); i++ {
		want, _ := d.row(i)
		got, _ := reloaded.row(i)
		assert.Equal(t, want, got)
		assert.Len(t, got, len(reloaded.header()))
	}
}

func TestCSVDataset_SaveFormat(t *testing.T) {
	d, fs := loadSheet(t, "Crystal Part Code,List of Items,Photos\nCP-1,Valve,\nCP-2,\"Coil, Large\",\n", false)

	require.NoError(t, d.SetImageURL(1, "https://img.example.com/coil.png"))
	require.NoError(t, d.Save(context.Background()))

	lines := strings.Split(strings.TrimSpace(readFile(t, fs, "sheet.csv")), "\n")
	assert.Equal(t, []string{
		"Crystal Part Code,List of Items,Photos",
		"2|CP-1,Valve,",
		"3|CP-2,\"Coil, Large\",https://img.example.com/coil.png",
	}, lines)
}

func TestCSVDataset_SaveCreatesBackupOfPreviousFile(t *testing.T) {
	d, fs := loadSheet(t, sheetExport, true)

	require.NoError(t, d.SetImageURL(0, "https://img.example.com/motor.png"))
	require.NoError(t, d.Save(context.Background()))

	assert.Equal(t, sheetExport, readFile(t, fs, "sheet.csv.backup"))
	assert.Contains(t, readFile(t, fs, "sheet.csv"), "https://img.example.com/motor.png")
}

func TestCSVDataset_SaveBeforeLoad(t *testing.T) {
	d := NewCSVDataset(memfs.New(), "sheet.csv", DefaultColumns, true, telemetry.DiscardLogger())

	assert.Error(t, d.Save(context.Background()))
}
