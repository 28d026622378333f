// Package output renders datasets, structure summaries and chart results
// as JSON, CSV or aligned tables.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mcncl/vizpath/internal/analyzer"
	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/pipeline"
)

// Supported formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Renderer writes results in the configured format.
type Renderer struct {
	format string
	pretty bool
	header func(column string) string
}

// NewRenderer creates a Renderer from the output and display settings.
// Column headers use display.field_mappings when one is set.
func NewRenderer(cfg *config.Config) *Renderer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Renderer{
		format: cfg.Output.Format,
		pretty: cfg.Output.Pretty,
		header: func(column string) string {
			if name, ok := cfg.DisplayName(column); ok {
				return name
			}
			return column
		},
	}
}

// Format returns the format the renderer writes.
func (r *Renderer) Format() string { return r.format }

// JSON writes v as JSON, indented when pretty output is on.
func (r *Renderer) JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return errors.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// Value writes a single document value. CSV and table output write its
// text form on one line.
func (r *Renderer) Value(w io.Writer, v models.Value) error {
	if r.format == FormatJSON {
		return r.JSON(w, v)
	}
	return writeLine(w, v.Text())
}

// Dataset writes rows. JSON keeps undefined cells as null; CSV and tables
// leave undefined and null cells empty.
func (r *Renderer) Dataset(w io.Writer, rows models.Dataset) error {
	switch r.format {
	case FormatCSV:
		cols := rows.Columns()
		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			records = append(records, cells(row, cols))
		}
		return writeCSV(w, r.headers(cols), records)
	case FormatTable:
		cols := rows.Columns()
		t := newTable(w, r.headers(cols)...)
		for _, row := range rows {
			t.row(cells(row, cols)...)
		}
		return t.flush()
	default:
		if rows == nil {
			rows = models.Dataset{}
		}
		return r.JSON(w, rows)
	}
}

// Summary writes a structure summary. CSV output lists the fields only.
func (r *Renderer) Summary(w io.Writer, s analyzer.Summary) error {
	switch r.format {
	case FormatCSV:
		records := make([][]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			records = append(records, fieldRecord(f))
		}
		return writeCSV(w, fieldHeader, records)
	case FormatTable:
		if len(s.Roots) > 0 {
			t := newTable(w, "ROOT", "PATH", "LENGTH", "ELEMENTS")
			for _, root := range s.Roots {
				t.row(root.Label, root.Path, strconv.Itoa(root.Length), string(root.ElementKind))
			}
			if err := t.flush(); err != nil {
				return err
			}
			if err := writeLine(w, ""); err != nil {
				return err
			}
		}
		t := newTable(w, lo.Map(fieldHeader, func(h string, _ int) string { return strings.ToUpper(h) })...)
		for _, f := range s.Fields {
			t.row(fieldRecord(f)...)
		}
		return t.flush()
	default:
		return r.JSON(w, s)
	}
}

var fieldHeader = []string{"path", "kind", "nullable", "occurrences", "sample"}

func fieldRecord(f analyzer.Field) []string {
	return []string{f.Path, string(f.Kind), strconv.FormatBool(f.Nullable), strconv.Itoa(f.Occurrences), f.Sample}
}

// Results writes pipeline results. CSV and table output give one status
// line per result; use JSON for the rows and chart data.
func (r *Renderer) Results(w io.Writer, results []pipeline.Result) error {
	switch r.format {
	case FormatCSV:
		records := make([][]string, 0, len(results))
		for _, res := range results {
			records = append(records, resultRecord(res))
		}
		return writeCSV(w, resultHeader, records)
	case FormatTable:
		t := newTable(w, "NAME", "GRAPH", "ROWS", "STATUS")
		for _, res := range results {
			t.row(resultRecord(res)...)
		}
		return t.flush()
	default:
		if results == nil {
			results = []pipeline.Result{}
		}
		return r.JSON(w, results)
	}
}

var resultHeader = []string{"name", "graph_type", "rows", "status"}

func resultRecord(res pipeline.Result) []string {
	status := "ok"
	switch {
	case res.Error != "":
		status = res.Error
	case res.Reason != "":
		status = res.Reason
	}
	return []string{res.Name, res.GraphType, strconv.Itoa(len(res.Rows)), status}
}

func (r *Renderer) headers(cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = r.header(col)
	}
	return out
}

func cells(row models.Row, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		v, _ := row.Get(col)
		out[i] = v.Text()
	}
	return out
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.NewOutputError("failed to write CSV header", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func writeLine(w io.Writer, s string) error {
	if _, err := fmt.Fprintln(w, s); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}

// Destination opens path for writing, or returns stdout when path is empty.
// The returned close function is always safe to call.
func Destination(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	return f, func() error {
		if err := f.Close(); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to close file '%s'", path), err)
		}
		return nil
	}, nil
}
