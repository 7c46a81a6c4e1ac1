package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/preview"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

// MinScale is the smallest render scale accepted for exports
const MinScale = 2.0

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatText, "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", domain.ErrExport, s)
}

type Options struct {
	Format Format
	Dir    string
	Scale  float64
	Theme  prefs.Theme
}

// Packer turns a rendered document into file contents
type Packer interface {
	Pack(doc preview.Document, opts Options) ([]byte, error)
}

// Exporter writes rendered invoices to disk. It only ever sees the
// formatted document, never the editor's draft.
type Exporter struct {
	packers map[Format]Packer
	log     *logger.Logger
}

func NewExporter(log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{
		packers: map[Format]Packer{
			FormatPDF:  pdfPacker{},
			FormatText: textPacker{},
		},
		log: log,
	}
}

// Export writes doc as Invoice-<number>.<ext> in opts.Dir and returns the path
func (e *Exporter) Export(ctx context.Context, doc preview.Document, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExport, err)
	}

	packer, ok := e.packers[opts.Format]
	if !ok {
		return "", fmt.Errorf("%w: unknown format %q", domain.ErrExport, opts.Format)
	}
	if opts.Scale < MinScale {
		opts.Scale = MinScale
	}
	if opts.Theme == "" {
		opts.Theme = prefs.ThemeLight
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}

	data, err := packer.Pack(doc, opts)
	if err != nil {
		e.log.Error().Err(err).Str("format", string(opts.Format)).Msg("failed to render export")
		return "", fmt.Errorf("%w: failed to render %s: %w", domain.ErrExport, opts.Format, err)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create output dir: %w", domain.ErrExport, err)
	}
	path := filepath.Join(opts.Dir, FileName(doc.InvoiceNumber, opts.Format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %w", domain.ErrExport, path, err)
	}

	e.log.Info().Str("path", path).Int("bytes", len(data)).Msg("invoice exported")
	return path, nil
}

// FileName returns Invoice-<number>.<ext> with anything unsafe for a file
// name replaced by a dash
func FileName(invoiceNumber string, format Format) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(invoiceNumber) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), ".-")
	if name == "" {
		name = "draft"
	}
	return "Invoice-" + name + "." + string(format)
}
