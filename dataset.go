package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// datasetColumns is the CSV header. Names follow the columns downstream
// notebooks already read.
var datasetColumns = []string{
	"pokemon", "url", FieldCatalogNumber, "elem_1", "elem_2", FieldSpecies,
	FieldHeight, FieldWeight, "male", "female", "is_genderless",
	"hp", "attack", "defense", "sp_atk", "sp_def", "speed", FieldTotal,
}

// textColumns are always quoted so spreadsheet tools keep them as strings.
var textColumns = map[string]bool{
	FieldCatalogNumber: true,
}

// Dataset is the assembled table: one record per entity in listing order.
type Dataset struct {
	Records []*EntityRecord `json:"records"`
}

// AssembleDataset orders the collected records by the resolver's reference
// order. Skipped entities have no row.
func AssembleDataset(refs []EntityReference, outcomes []Outcome) *Dataset {
	byURL := make(map[string]*EntityRecord, len(outcomes))
	for _, o := range outcomes {
		if o.Record != nil {
			byURL[o.Reference.URL] = o.Record
		}
	}

	ds := &Dataset{Records: make([]*EntityRecord, 0, len(byURL))}
	for _, ref := range refs {
		if rec, ok := byURL[ref.URL]; ok {
			ds.Records = append(ds.Records, rec)
		}
	}
	return ds
}

// Header returns the column names.
func (d *Dataset) Header() []string {
	return append([]string(nil), datasetColumns...)
}

// Rows renders each record as CSV cells. Absent values are empty cells.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, 0, len(d.Records))
	for _, r := range d.Records {
		rows = append(rows, recordRow(r))
	}
	return rows
}

func recordRow(r *EntityRecord) []string {
	row := []string{
		r.Name,
		r.URL,
		r.CatalogNumber,
		r.PrimaryType,
		formatString(r.SecondaryType),
		formatString(r.Species),
		formatFloat(r.HeightMeters),
		formatFloat(r.WeightKilograms),
		formatFloat(r.GenderRatioMale),
		formatFloat(r.GenderRatioFemale),
		strconv.FormatBool(r.IsGenderless),
	}
	for _, s := range Stats {
		if v, ok := r.Stats[s]; ok {
			row = append(row, strconv.Itoa(v))
		} else {
			row = append(row, "")
		}
	}
	return append(row, formatInt(r.StatTotal))
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// WriteCSV writes the header and all rows as RFC 4180 CSV.
func (d *Dataset) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	header := d.Header()
	if err := writeCSVLine(bw, header, nil); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	quoted := make([]bool, len(header))
	for i, col := range header {
		quoted[i] = textColumns[col]
	}
	for i, row := range d.Rows() {
		if err := writeCSVLine(bw, row, quoted); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// SaveCSV writes the dataset to path in one step: the rows go to a temporary
// file in the same directory which then replaces path.
func (d *Dataset) SaveCSV(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pokedex-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := d.WriteCSV(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// writeCSVLine writes one record. Fields are quoted when they need it or
// when force marks them as text columns.
func writeCSVLine(w *bufio.Writer, fields []string, force []bool) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		quote := strings.ContainsAny(field, ",\"\r\n") ||
			(field != "" && (field[0] == ' ' || field[0] == '\t')) ||
			(i < len(force) && force[i])
		if !quote {
			if _, err := w.WriteString(field); err != nil {
				return err
			}
			continue
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}
