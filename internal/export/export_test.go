package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func sampleDoc(t *testing.T) preview.Document {
	t.Helper()
	inv := domain.NewInvoice(domain.DefaultTemplate(), domain.NewDate(2024, 5, 1).Time)
	return preview.Render(inv, i18n.MustLoad().For("en"), language.English)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		number string
		format Format
		want   string
	}{
		{"INV-001", FormatPDF, "Invoice-INV-001.pdf"},
		{"2024/05 #3", FormatText, "Invoice-2024-05--3.txt"},
		{"../../etc/passwd", FormatPDF, "Invoice-etc-passwd.pdf"},
		{"  ", FormatPDF, "Invoice-draft.pdf"},
		{"Hóa đơn 1", FormatText, "Invoice-H-a---n-1.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.number, tt.format))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, domain.ErrExport)
}

func TestExport_Text(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := NewExporter(nil)

	path, err := e.Export(context.Background(), sampleDoc(t), Options{Format: FormatText, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Invoice-INV-001.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "INVOICE\n"))
	assert.Contains(t, out, "Invoice #:   INV-001")
	assert.Contains(t, out, "Due Date:    2024-05-31")
	assert.Contains(t, out, "  Client Company\n")
	assert.Contains(t, out, "  456 Client Avenue\n")
	assert.Contains(t, out, "Web Development Service")
	assert.Contains(t, out, "1.000,00 €")
	assert.Contains(t, out, "Tax (5%):")
	assert.Contains(t, out, "1.050,00 €")
	assert.Contains(t, out, "Thank you for your business.")
}

func TestExport_PDF(t *testing.T) {
	e := NewExporter(nil)
	for _, theme := range []prefs.Theme{prefs.ThemeLight, prefs.ThemeDark} {
		t.Run(string(theme), func(t *testing.T) {
			path, err := e.Export(context.Background(), sampleDoc(t), Options{
				Format: FormatPDF,
				Dir:    t.TempDir(),
				Scale:  1,
				Theme:  theme,
			})
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
		})
	}
}

func TestExport_Failures(t *testing.T) {
	e := NewExporter(nil)
	doc := sampleDoc(t)

	_, err := e.Export(context.Background(), doc, Options{Format: "docx", Dir: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrExport)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Export(ctx, doc, Options{Format: FormatText, Dir: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrExport)
	assert.ErrorIs(t, err, context.Canceled)

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err = e.Export(context.Background(), doc, Options{Format: FormatText, Dir: blocker})
	assert.ErrorIs(t, err, domain.ErrExport)
}
