package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the report rows, with a header, as CSV.
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = fmt.Sprint(c)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range report.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Invoice,
			row.Client,
			row.Product,
			strconv.Itoa(row.Quantity),
			row.Amount.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
