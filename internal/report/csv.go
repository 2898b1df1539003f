package report

import (
	"encoding/csv"
	"io"
)

// CSVHeader is the header row of every dimension CSV.
var CSVHeader = []string{"Item", "Quantidade"}

// WriteCSV writes every entry of t, sorted but not truncated.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, e := range t.All {
		if err := cw.Write([]string{e.Key, FormatValue(t.Kind, e.Value)}); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
