package prefs

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/logger"
	"golang.org/x/text/language"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", &domain.ValidationError{Field: "theme", Message: fmt.Sprintf("unknown theme %q", s)}
}

func ParseLanguage(s string) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(s))
	if !i18n.Supported(lang) {
		return "", &domain.ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", s)}
	}
	return lang, nil
}

type Preferences struct {
	Language string
	Theme    Theme
}

// Persister stores preferences somewhere durable
type Persister interface {
	SavePreferences(Preferences) error
}

// PersistFunc adapts a function to Persister
type PersistFunc func(Preferences) error

func (f PersistFunc) SavePreferences(p Preferences) error { return f(p) }

// Store is the process-wide holder of UI preferences
type Store struct {
	persist Persister
	log     *logger.Logger

	mu    sync.Mutex
	prefs Preferences

	subMu  sync.Mutex
	subs   map[int]func(Preferences)
	nextID int
}

// NewStore creates the store. Invalid values in initial are replaced by
// the detected language and the light theme.
func NewStore(initial Preferences, persist Persister, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	if lang, err := ParseLanguage(initial.Language); err == nil {
		initial.Language = lang
	} else {
		initial.Language = DetectLanguage(os.Getenv)
	}
	if theme, err := ParseTheme(string(initial.Theme)); err == nil {
		initial.Theme = theme
	} else {
		initial.Theme = ThemeLight
	}
	return &Store{
		persist: persist,
		log:     log,
		prefs:   initial,
		subs:    make(map[int]func(Preferences)),
	}
}

func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Store) SetLanguage(lang string) error {
	lang, err := ParseLanguage(lang)
	if err != nil {
		return err
	}
	return s.update(func(p *Preferences) { p.Language = lang })
}

func (s *Store) SetTheme(theme Theme) error {
	theme, err := ParseTheme(string(theme))
	if err != nil {
		return err
	}
	return s.update(func(p *Preferences) { p.Theme = theme })
}

// ToggleTheme flips between light and dark and returns the new theme
func (s *Store) ToggleTheme() (Theme, error) {
	var next Theme
	err := s.update(func(p *Preferences) {
		if p.Theme == ThemeDark {
			p.Theme = ThemeLight
		} else {
			p.Theme = ThemeDark
		}
		next = p.Theme
	})
	return next, err
}

// update applies fn, persists and notifies. The in-memory value changes even
// when persisting fails so the UI stays consistent for this session.
func (s *Store) update(fn func(*Preferences)) error {
	s.mu.Lock()
	prev := s.prefs
	fn(&s.prefs)
	next := s.prefs
	s.mu.Unlock()

	if next == prev {
		return nil
	}

	var err error
	if s.persist != nil {
		if err = s.persist.SavePreferences(next); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist preferences")
			err = fmt.Errorf("failed to save preferences: %w", err)
		}
	}
	s.log.Debug().Str("language", next.Language).Str("theme", string(next.Theme)).Msg("preferences changed")
	s.emit(next)
	return err
}

// Subscribe registers fn for preference changes
func (s *Store) Subscribe(fn func(Preferences)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) emit(p Preferences) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Preferences), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Vietnamese,
	language.Dutch,
})

// DetectLanguage picks a supported language from LC_ALL, LC_MESSAGES or
// LANG (in that order), e.g. "vi_VN.UTF-8". It falls back to English.
func DetectLanguage(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := getenv(name)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		if i := strings.IndexAny(raw, ".@"); i >= 0 {
			raw = raw[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
		if err != nil {
			continue
		}
		_, idx, conf := matcher.Match(tag)
		if conf == language.No {
			return i18n.Fallback
		}
		return i18n.Languages[idx]
	}
	return i18n.Fallback
}
