package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one column of a CLI table. Numbers read better right aligned.
type column struct {
	title   string
	numeric bool
}

func label(title string) column  { return column{title: title} }
func numeric(title string) column { return column{title: title, numeric: true} }

// sheet is a titled table of rows under a fixed column layout. Short rows are
// padded so every row spans the header.
type sheet struct {
	title string
	cols  []column
	rows  []table.Row
}

func newSheet(title string, cols ...column) *sheet {
	return &sheet{title: title, cols: cols}
}

func (s *sheet) add(cells ...string) {
	row := make(table.Row, len(s.cols))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	s.rows = append(s.rows, row)
}

func (s *sheet) addAll(rows [][]string) *sheet {
	for _, r := range rows {
		s.add(r...)
	}
	return s
}

func (s *sheet) String() string {
	if len(s.cols) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Align = text.AlignLeft
	if s.title != "" {
		tw.SetTitle(s.title)
	}

	header := make(table.Row, len(s.cols))
	configs := make([]table.ColumnConfig, len(s.cols))
	for i, c := range s.cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.AppendRows(s.rows)
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
