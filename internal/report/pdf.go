package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/noah-isme/profitpro/internal/calculator"
)

var (
	brandColor  = &props.Color{Red: 99, Green: 102, Blue: 241}
	mutedColor  = &props.Color{Red: 100, Green: 100, Blue: 100}
	bodyColor   = &props.Color{Red: 60, Green: 60, Blue: 60}
	footerColor = &props.Color{Red: 150, Green: 150, Blue: 150}
	gainColor   = &props.Color{Red: 16, Green: 185, Blue: 129}
	lossColor   = &props.Color{Red: 239, Green: 68, Blue: 68}
)

// PDF renders the calculation report as a PDF document.
func PDF(calc calculator.Calculation) ([]byte, error) {
	content := Build(calc)

	cfg := config.NewBuilder().
		WithLeftMargin(20).
		WithRightMargin(20).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	if err := m.RegisterFooter(text.NewRow(10, Footer, props.Text{Size: 9, Color: footerColor})); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRow(10, text.NewCol(12, Title, props.Text{Size: 20, Style: fontstyle.Bold, Color: brandColor}))
	m.AddRow(6, text.NewCol(12, content.Generated, props.Text{Size: 10, Color: mutedColor}))
	m.AddRow(4, line.NewCol(12, props.Line{Color: brandColor, Thickness: 0.4}))

	m.AddRows(section("Input Details", content.Inputs, bodyColor)...)
	m.AddRows(section("Calculation Results", content.Results, bodyColor)...)

	profitColor := gainColor
	if !content.Positive {
		profitColor = lossColor
	}
	m.AddRow(4)
	for _, l := range content.Profit {
		m.AddRow(7, text.NewCol(12, l.String(), props.Text{Size: 12, Style: fontstyle.Bold, Color: profitColor}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	return doc.GetBytes(), nil
}

func section(heading string, lines []Line, color *props.Color) []core.Row {
	rows := []core.Row{
		text.NewRow(12, heading, props.Text{Top: 4, Size: 14, Style: fontstyle.Bold, Align: align.Left}),
	}
	for _, l := range lines {
		rows = append(rows, text.NewRow(7, l.String(), props.Text{Size: 11, Color: color}))
	}
	return rows
}
