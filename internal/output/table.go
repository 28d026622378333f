package output

import (
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcncl/vizpath/internal/errors"
)

var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ")

type table struct {
	tw  *tabwriter.Writer
	err error
}

// newTable starts an aligned table.
func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	if t.err != nil {
		return
	}
	clean := make([]string, len(cols))
	for i, col := range cols {
		clean[i] = cellReplacer.Replace(col)
	}
	_, t.err = io.WriteString(t.tw, strings.Join(clean, "\t")+"\n")
}

func (t *table) flush() error {
	if t.err == nil {
		t.err = t.tw.Flush()
	}
	if t.err != nil {
		return errors.NewOutputError("failed to write table", t.err)
	}
	return nil
}
