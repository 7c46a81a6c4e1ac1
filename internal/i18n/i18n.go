package i18n

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Supported languages, English first as the fallback.
var Languages = []string{"en", "vi", "nl"}

const Fallback = "en"

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Catalog holds every loaded translation table keyed by language code
type Catalog struct {
	tables map[string]map[string]string
}

// Load parses the embedded catalogs
func Load() (*Catalog, error) {
	c := &Catalog{tables: make(map[string]map[string]string, len(Languages))}
	for _, lang := range Languages {
		data, err := locales.ReadFile(path.Join("locales", lang+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s catalog: %w", lang, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse %s catalog: %w", lang, err)
		}
		c.tables[lang] = table
	}
	return c, nil
}

// MustLoad is Load for package initialisation and tests
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Supported reports whether lang has a catalog
func Supported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Tag returns the BCP 47 tag for a supported language code
func Tag(lang string) language.Tag {
	if !Supported(lang) {
		lang = Fallback
	}
	return language.MustParse(lang)
}

// Translator renders keys for one language
type Translator struct {
	catalog *Catalog
	lang    string
}

// For returns a translator bound to lang. Unknown languages use the fallback.
func (c *Catalog) For(lang string) Translator {
	if !Supported(lang) {
		lang = Fallback
	}
	return Translator{catalog: c, lang: lang}
}

func (t Translator) Lang() string { return t.lang }

func (t Translator) Tag() language.Tag { return Tag(t.lang) }

// T looks up key and substitutes {{name}} placeholders from vars, given as
// alternating name/value pairs. Missing keys fall back to English and then
// to the key itself.
func (t Translator) T(key string, vars ...any) string {
	msg, ok := t.lookup(key)
	if !ok {
		return key
	}
	if len(vars) < 2 {
		return msg
	}

	values := make(map[string]string, len(vars)/2)
	for n := 0; n+1 < len(vars); n += 2 {
		values[fmt.Sprint(vars[n])] = fmt.Sprint(vars[n+1])
	}
	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		if v, ok := values[name]; ok {
			return v
		}
		return m
	})
}

func (t Translator) lookup(key string) (string, bool) {
	if t.catalog == nil {
		return "", false
	}
	if msg, ok := t.catalog.tables[t.lang][key]; ok {
		return msg, true
	}
	msg, ok := t.catalog.tables[Fallback][key]
	return msg, ok
}
