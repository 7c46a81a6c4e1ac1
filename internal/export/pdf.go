package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	mimage "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/preview"
)

type palette struct {
	background color.RGBA
	text       *props.Color
	muted      *props.Color
	accent     *props.Color
	rule       *props.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.ThemeLight: {
		background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		text:       &props.Color{Red: 17, Green: 24, Blue: 39},
		muted:      &props.Color{Red: 107, Green: 114, Blue: 128},
		accent:     &props.Color{Red: 79, Green: 70, Blue: 229},
		rule:       &props.Color{Red: 229, Green: 231, Blue: 235},
	},
	prefs.ThemeDark: {
		background: color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff},
		text:       &props.Color{Red: 243, Green: 244, Blue: 246},
		muted:      &props.Color{Red: 156, Green: 163, Blue: 175},
		accent:     &props.Color{Red: 129, Green: 140, Blue: 248},
		rule:       &props.Color{Red: 55, Green: 65, Blue: 81},
	},
}

// logoMaxPx is the logo width that fills the whole logo column
const logoMaxPx = float64(domain.MaxLogoWidth)

type pdfPacker struct{}

func (pdfPacker) Pack(doc preview.Document, opts Options) ([]byte, error) {
	pal, ok := palettes[opts.Theme]
	if !ok {
		pal = palettes[prefs.ThemeLight]
	}
	bg, err := solidPNG(pal.background)
	if err != nil {
		return nil, err
	}
	// Sizes below are for scale 2; larger scales enlarge the text.
	f := opts.Scale / MinScale

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9 * f, Color: pal.text}).
		WithBackgroundImage(bg, extension.Png).
		WithTitle(doc.Labels.Title+" "+doc.InvoiceNumber, true).
		WithAuthor(doc.From.Name, true).
		Build()

	m := maroto.New(cfg)
	p := pdfLayout{pal: pal, f: f}

	m.AddRows(p.headerRow(doc))
	m.AddRows(line.NewRow(4, props.Line{Color: pal.rule, Thickness: 0.3}))
	m.AddRows(p.partiesRow(doc))
	m.AddRows(line.NewRow(4, props.Line{Color: pal.rule, Thickness: 0.3}))
	m.AddRows(p.tableHeaderRow(doc))
	m.AddRows(p.itemRows(doc)...)
	m.AddRows(line.NewRow(4, props.Line{Color: pal.rule, Thickness: 0.3}))
	m.AddRows(p.totalRows(doc)...)
	if doc.Notes != "" {
		m.AddRows(p.notesRows(doc)...)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

type pdfLayout struct {
	pal palette
	f   float64
}

func (p pdfLayout) h(mm float64) float64 { return mm * p.f }

func (p pdfLayout) headerRow(doc preview.Document) core.Row {
	left := col.New(6)
	if doc.Logo != nil {
		if ext, ok := logoExtension(doc.Logo.MIMEType); ok {
			pct := float64(doc.LogoWidth) / logoMaxPx * 100
			left.Add(mimage.NewFromBytes(doc.Logo.Data, ext, props.Rect{Percent: pct}))
		}
	} else {
		left.Add(text.New(doc.From.Name, props.Text{
			Style: fontstyle.Bold, Size: 14 * p.f, Color: p.pal.text, Top: 2,
		}))
	}

	return row.New(p.h(30)).Add(
		left,
		col.New(6).Add(
			text.New(doc.Labels.Title, props.Text{
				Style: fontstyle.Bold, Size: 20 * p.f, Align: align.Right, Color: p.pal.accent,
			}),
			text.New(doc.Labels.Number+" "+doc.InvoiceNumber, props.Text{
				Size: 9 * p.f, Align: align.Right, Top: p.h(10), Color: p.pal.muted,
			}),
			text.New(doc.Labels.Date+": "+doc.Date, props.Text{
				Size: 9 * p.f, Align: align.Right, Top: p.h(15), Color: p.pal.muted,
			}),
			text.New(doc.Labels.DueDate+": "+doc.DueDate, props.Text{
				Size: 9 * p.f, Align: align.Right, Top: p.h(20), Color: p.pal.muted,
			}),
		),
	)
}

func (p pdfLayout) partyCol(label string, party preview.Party, a align.Type) core.Col {
	c := col.New(6).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8 * p.f, Color: p.pal.muted, Align: a,
	}))
	top := p.h(5)
	lines := append([]string{party.Name}, party.Address...)
	lines = append(lines, party.Email)
	for n, s := range lines {
		if s == "" {
			continue
		}
		style := fontstyle.Normal
		if n == 0 {
			style = fontstyle.Bold
		}
		c.Add(text.New(s, props.Text{Style: style, Size: 9 * p.f, Top: top, Color: p.pal.text, Align: a}))
		top += p.h(4.5)
	}
	return c
}

func (p pdfLayout) partiesRow(doc preview.Document) core.Row {
	n := max(len(doc.From.Address), len(doc.To.Address))
	return row.New(p.h(16 + 4.5*float64(n))).Add(
		p.partyCol(doc.Labels.From, doc.From, align.Left),
		p.partyCol(doc.Labels.BillTo, doc.To, align.Right),
	)
}

func (p pdfLayout) tableHeaderRow(doc preview.Document) core.Row {
	cell := func(size int, label string, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8 * p.f, Align: a, Color: p.pal.muted, Top: 1,
		}))
	}
	return row.New(p.h(7)).Add(
		cell(6, doc.Labels.Description, align.Left),
		cell(2, doc.Labels.Quantity, align.Right),
		cell(2, doc.Labels.Price, align.Right),
		cell(2, doc.Labels.Amount, align.Right),
	)
}

func (p pdfLayout) itemRows(doc preview.Document) []core.Row {
	rows := make([]core.Row, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		cell := func(size int, s string, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 9 * p.f, Align: a, Color: p.pal.text, Top: 1}))
		}
		rows = append(rows, row.New(p.h(7)).Add(
			cell(6, r.Description, align.Left),
			cell(2, r.Quantity, align.Right),
			cell(2, r.Price, align.Right),
			cell(2, r.Amount, align.Right),
		))
	}
	return rows
}

func (p pdfLayout) totalRows(doc preview.Document) []core.Row {
	total := func(label, value string, grand bool) core.Row {
		tp := props.Text{Size: 9 * p.f, Align: align.Right, Color: p.pal.text}
		if grand {
			tp.Style = fontstyle.Bold
			tp.Size = 11 * p.f
			tp.Color = p.pal.accent
		}
		return row.New(p.h(7)).Add(
			col.New(6),
			col.New(3).Add(text.New(label, tp)),
			col.New(3).Add(text.New(value, tp)),
		)
	}
	return []core.Row{
		total(doc.Labels.Subtotal, doc.Subtotal, false),
		total(doc.Labels.Tax, doc.Tax, false),
		total(doc.Labels.Total, doc.Total, true),
	}
}

func (p pdfLayout) notesRows(doc preview.Document) []core.Row {
	return []core.Row{
		row.New(p.h(8)),
		row.New(p.h(6)).Add(col.New(12).Add(text.New(doc.Labels.Notes, props.Text{
			Style: fontstyle.Bold, Size: 8 * p.f, Color: p.pal.muted,
		}))),
		row.New(p.h(14)).Add(col.New(12).Add(text.New(doc.Notes, props.Text{
			Size: 9 * p.f, Color: p.pal.text,
		}))),
	}
}

func logoExtension(mime string) (extension.Type, bool) {
	switch mime {
	case "image/png":
		return extension.Png, true
	case "image/jpeg":
		return extension.Jpg, true
	}
	return "", false
}

// solidPNG draws a small single-colour image that is stretched across the
// page as its background
func solidPNG(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 21, 29))
	for y := 0; y < 29; y++ {
		for x := 0; x < 21; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode background: %w", err)
	}
	return buf.Bytes(), nil
}
