package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/danmuck/fileget/internal/download"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func renderSummary(w io.Writer, report download.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Path", "Bytes", "Result")
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
		cfg.Footer = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
	})

	total := 0
	for _, o := range report.Outcomes {
		result := "ok"
		if o.Err != nil {
			result = describe(o.Err)
		}
		total += o.Bytes
		if err := table.Append([]string{o.Name, o.Path, strconv.Itoa(o.Bytes), result}); err != nil {
			return err
		}
	}
	table.Footer("", "", strconv.Itoa(total), fmt.Sprintf("%d/%d written", report.Written(), len(report.Outcomes)))
	return table.Render()
}
