package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	// Indian grouping with the rupee sign; Excel has no native lakh grouping.
	moneyNumFmt   = `[>=10000000]"₹"##\,##\,##\,##0.00;[>=100000]"₹"##\,##\,##0.00;"₹"#,##0.00`
	percentNumFmt = `0.00"%"`
)

// WriteXLSX writes one worksheet per table: a bold header row then one row per
// record. Money and percentages are numeric cells with display formats.
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: no tables to write")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	moneyFmt := moneyNumFmt
	percentFmt := percentNumFmt
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("export: money style: %w", err)
	}
	percentStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt})
	if err != nil {
		return fmt.Errorf("export: percent style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, t := range tables {
		name := sheetName(t, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: new sheet %s: %w", name, err)
		}

		for col, c := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(name, cell, c.Header); err != nil {
				return err
			}
			if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		for r, row := range t.Rows {
			for col, value := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := writeCell(f, name, cell, value, moneyStyle, percentStyle); err != nil {
					return fmt.Errorf("export: write %s!%s: %w", name, cell, err)
				}
			}
		}
	}
	return f.Write(w)
}

func writeCell(f *excelize.File, sheet, cell string, value Cell, moneyStyle, percentStyle int) error {
	switch value.Kind {
	case KindMoney:
		if err := f.SetCellValue(sheet, cell, value.Amount.Round(2).InexactFloat64()); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, moneyStyle)
	case KindPercent:
		if err := f.SetCellValue(sheet, cell, value.Amount.Round(2).InexactFloat64()); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, percentStyle)
	case KindCount:
		return f.SetCellValue(sheet, cell, value.Count)
	default:
		return f.SetCellStr(sheet, cell, value.Text)
	}
}

func sheetName(t Table, i int) string {
	name := t.Sheet
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}
