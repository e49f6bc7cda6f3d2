package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/renewsim/internal/projection"
)

var csvHeader = append(append([]string{"year"}, projection.ColumnNames()...), "scenario")

// ExportData is the JSON document for a run: its metadata and every row.
type ExportData struct {
	Metadata *RunMetadata     `json:"metadata,omitempty"`
	Rows     []projection.Row `json:"rows"`
}

// WriteJSON encodes rows, with optional metadata. Non-finite values are
// written as null.
func WriteJSON(w io.Writer, meta *RunMetadata, rows []projection.Row) error {
	if rows == nil {
		rows = []projection.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: meta, Rows: rows})
}

// WriteCSV writes rows under a fixed header. Non-finite values are written
// as empty cells.
func WriteCSV(w io.Writer, rows []projection.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			strconv.Itoa(row.Year),
			formatCell(row.RenewableCapacity),
			formatCell(row.Investment),
			formatCell(row.Infrastructure),
			formatCell(row.TotalCapacity),
			formatCell(row.RenewableShare),
			row.Scenario,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(f projection.Float) string {
	if !f.Valid() {
		return ""
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

func ReadCSV(r *csv.Reader) ([]projection.Row, error) {
	r.FieldsPerRecord = len(csvHeader)

	header, err := r.Read()
	if err == io.EOF {
		return []projection.Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return nil, fmt.Errorf("storage: unexpected column %q at %d, want %q", header[i], i, name)
		}
	}

	rows := make([]projection.Row, 0)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		year, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: bad year %q: %w", rec[0], err)
		}
		vals := make([]projection.Float, 5)
		for i := range vals {
			if vals[i], err = parseCell(rec[i+1]); err != nil {
				return nil, err
			}
		}
		rows = append(rows, projection.Row{
			Year:              year,
			RenewableCapacity: vals[0],
			Investment:        vals[1],
			Infrastructure:    vals[2],
			TotalCapacity:     vals[3],
			RenewableShare:    vals[4],
			Scenario:          rec[6],
		})
	}
	return rows, nil
}

func parseCell(s string) (projection.Float, error) {
	if s == "" {
		return projection.Float(math.NaN()), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: bad value %q: %w", s, err)
	}
	return projection.Float(v), nil
}
