package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV serialises a table as CSV. Amounts are plain two-decimal numbers so
// the file imports cleanly into other tools.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		header = append(header, c.Header)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, 0, len(row))
		for _, cell := range row {
			switch cell.Kind {
			case KindMoney, KindPercent:
				record = append(record, cell.Amount.StringFixed(2))
			default:
				record = append(record, cell.Display(INR))
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
