// Package report renders batch analysis results as a terminal table or an
// Excel workbook.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "Results"

// Row is one analysed item.
type Row struct {
	Item       string
	Kind       string
	Verdict    string
	Confidence float64
	Score      float64
	Method     string
	Error      string
}

var headers = []string{"Item", "Kind", "Verdict", "Confidence", "Score", "Method", "Error"}

// Summary counts rows by outcome.
type Summary struct {
	Total     int
	Flagged   int
	Failed    int
	Authentic int
}

// Summarize tallies rows. A row is flagged when its verdict is fake or
// deepfake.
func Summarize(rows []Row) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		switch {
		case r.Error != "":
			s.Failed++
		case r.Verdict == "fake" || r.Verdict == "deepfake":
			s.Flagged++
		default:
			s.Authentic++
		}
	}
	return s
}

// Table writes rows as a formatted table to w.
func Table(w io.Writer, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Confidence", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
		{Name: "Error", WidthMax: 40},
	})

	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Item,
			r.Kind,
			r.Verdict,
			fmt.Sprintf("%.2f", r.Confidence),
			fmt.Sprintf("%.3f", r.Score),
			r.Method,
			r.Error,
		})
	}

	s := Summarize(rows)
	t.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d", s.Total),
		"",
		fmt.Sprintf("Flagged: %d", s.Flagged),
		"",
		"",
		"",
		fmt.Sprintf("Failed: %d", s.Failed),
	})
	t.Render()
}

// WriteXLSX writes rows to a new workbook at path.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		if err := setCell(f, i+1, 1, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := []any{row.Item, row.Kind, row.Verdict, row.Confidence, row.Score, row.Method, row.Error}
		for c, v := range values {
			if err := setCell(f, c+1, r+2, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
