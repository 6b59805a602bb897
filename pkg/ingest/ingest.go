// Package ingest reads district lineage records from CSV and JSON files.
//
// Both readers apply the same cleaning rules before a record reaches the
// lineage package: every cell is whitespace-trimmed, rows whose source and
// destination are the same district are dropped, and rows missing a source,
// destination or region are dropped. Years are parsed leniently with
// [lineage.ParseYear]; an unreadable year becomes unknown, not an error.
//
// # CSV
//
// The first row is a header. Column names are matched case-insensitively:
//
//	source_district,dest_district,dest_year,filter_state
//	Mysore,Chamarajanagar,1997,Karnataka
//
// Use [Columns] to read files with different headers. When the region column
// is absent, a column named "state" is accepted instead.
//
// # JSON
//
// A JSON file holds an array of objects:
//
//	[{"source": "Mysore", "dest": "Chamarajanagar", "year": 1997, "region": "Karnataka"}]
//
// "year" may be a number, a numeric string, or null.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/lineage"
)

// Default column names.
const (
	DefaultSourceColumn = "source_district"
	DefaultDestColumn   = "dest_district"
	DefaultYearColumn   = "dest_year"
	DefaultRegionColumn = "filter_state"

	// RegionAliasColumn is accepted when the configured region column is missing.
	RegionAliasColumn = "state"
)

// Columns names the CSV header fields holding each record attribute.
// Empty fields fall back to the defaults.
type Columns struct {
	Source string `toml:"source"`
	Dest   string `toml:"dest"`
	Year   string `toml:"year"`
	Region string `toml:"region"`
}

// DefaultColumns returns the column names used by the district changes dataset.
func DefaultColumns() Columns {
	return Columns{
		Source: DefaultSourceColumn,
		Dest:   DefaultDestColumn,
		Year:   DefaultYearColumn,
		Region: DefaultRegionColumn,
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.Dest == "" {
		c.Dest = d.Dest
	}
	if c.Year == "" {
		c.Year = d.Year
	}
	if c.Region == "" {
		c.Region = d.Region
	}
	return c
}

// Stats counts what happened to the input rows.
type Stats struct {
	Rows           int // data rows read, header excluded
	Kept           int
	SelfReferences int // source == dest
	Incomplete     int // missing source, dest or region
	UnknownYears   int // kept rows whose year could not be parsed
}

// Dropped returns the number of rows discarded during cleaning.
func (s Stats) Dropped() int { return s.SelfReferences + s.Incomplete }

// cleaner applies the shared row filter and tallies Stats.
type cleaner struct {
	stats   Stats
	records []lineage.EdgeRecord
}

func (c *cleaner) add(source, dest, region string, year any) {
	c.stats.Rows++
	source = strings.TrimSpace(source)
	dest = strings.TrimSpace(dest)
	region = strings.TrimSpace(region)
	switch {
	case source == "" || dest == "" || region == "":
		c.stats.Incomplete++
		return
	case source == dest:
		c.stats.SelfReferences++
		return
	}
	rec := lineage.NewEdgeRecord(source, dest, region, year)
	if rec.Year == nil {
		c.stats.UnknownYears++
	}
	c.stats.Kept++
	c.records = append(c.records, rec)
}

// ReadCSV reads lineage records from CSV data with a header row.
//
// A missing source, destination or region column returns an
// [errors.ErrCodeInvalidInput] error naming the available columns. A missing
// year column is tolerated: every year is then unknown. Rows with a
// different number of fields than the header are accepted as long as the
// required columns are present. ReadCSV does not close r.
func ReadCSV(r io.Reader, cols Columns) ([]lineage.EdgeRecord, Stats, error) {
	cols = cols.withDefaults()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput, "empty CSV input: header row required")
	}
	if err != nil {
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV header")
	}

	columnMap := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := columnMap[name]; !dup {
			columnMap[name] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := columnMap[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	srcCol, dstCol, yearCol, regCol := lookup(cols.Source), lookup(cols.Dest), lookup(cols.Year), lookup(cols.Region)
	if regCol < 0 {
		regCol = lookup(RegionAliasColumn)
	}
	var missing []string
	if srcCol < 0 {
		missing = append(missing, cols.Source)
	}
	if dstCol < 0 {
		missing = append(missing, cols.Dest)
	}
	if regCol < 0 {
		missing = append(missing, cols.Region)
	}
	if len(missing) > 0 {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput,
			"missing column(s) %s in CSV header; available: %s",
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var c cleaner
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, c.stats, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV row %d", line)
		}
		var year any
		if y := cell(row, yearCol); y != "" {
			year = y
		}
		c.add(cell(row, srcCol), cell(row, dstCol), cell(row, regCol), year)
	}
	return c.records, c.stats, nil
}

type jsonRecord struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Year   any    `json:"year"`
	Region string `json:"region"`
}

// ReadJSON reads lineage records from a JSON array. It applies the same
// cleaning rules as [ReadCSV]. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]lineage.EdgeRecord, Stats, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var data []jsonRecord
	if err := dec.Decode(&data); err != nil {
		return nil, Stats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON records")
	}

	var c cleaner
	for _, d := range data {
		c.add(d.Source, d.Dest, d.Region, d.Year)
	}
	return c.records, c.stats, nil
}

// ReadFile reads records from path, choosing the decoder by extension
// (.csv or .json). cols applies to CSV only.
func ReadFile(path string, cols Columns) ([]lineage.EdgeRecord, Stats, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var read func(io.Reader) ([]lineage.EdgeRecord, Stats, error)
	switch ext {
	case ".csv":
		read = func(r io.Reader) ([]lineage.EdgeRecord, Stats, error) { return ReadCSV(r, cols) }
	case ".json":
		read = ReadJSON
	default:
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q (want .csv or .json)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Stats{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, stats, err := read(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return records, stats, nil
}
