package prefs

import (
	"errors"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	saved []Preferences
	err   error
}

func (m *memPersister) SavePreferences(p Preferences) error {
	m.saved = append(m.saved, p)
	return m.err
}

func TestNewStore_Normalizes(t *testing.T) {
	s := NewStore(Preferences{Language: "NL", Theme: "Dark"}, nil, nil)
	assert.Equal(t, Preferences{Language: "nl", Theme: ThemeDark}, s.Get())

	s = NewStore(Preferences{Language: "nl", Theme: "neon"}, nil, nil)
	assert.Equal(t, ThemeLight, s.Get().Theme)
}

func TestStore_SetAndPersist(t *testing.T) {
	p := &memPersister{}
	s := NewStore(Preferences{Language: "en", Theme: ThemeLight}, p, nil)

	var seen []Preferences
	unsub := s.Subscribe(func(pr Preferences) { seen = append(seen, pr) })

	require.NoError(t, s.SetLanguage("vi"))
	theme, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	// Unchanged values are not persisted again.
	require.NoError(t, s.SetTheme(ThemeDark))

	want := []Preferences{
		{Language: "vi", Theme: ThemeLight},
		{Language: "vi", Theme: ThemeDark},
	}
	assert.Equal(t, want, p.saved)
	assert.Equal(t, want, seen)

	unsub()
	unsub()
	_, err = s.ToggleTheme()
	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.Equal(t, ThemeLight, s.Get().Theme)
}

func TestStore_RejectsInvalid(t *testing.T) {
	p := &memPersister{}
	s := NewStore(Preferences{Language: "en", Theme: ThemeLight}, p, nil)

	err := s.SetLanguage("fr")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "language", domain.FieldOf(err))

	err = s.SetTheme("blue")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, p.saved)
}

func TestStore_PersistFailureKeepsValue(t *testing.T) {
	boom := errors.New("disk full")
	s := NewStore(Preferences{Language: "en"}, &memPersister{err: boom}, nil)

	err := s.SetLanguage("nl")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "nl", s.Get().Language)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"vietnamese", map[string]string{"LANG": "vi_VN.UTF-8"}, "vi"},
		{"dutch belgium", map[string]string{"LANG": "nl_BE@euro"}, "nl"},
		{"lc_all wins", map[string]string{"LC_ALL": "nl_NL.UTF-8", "LANG": "vi_VN.UTF-8"}, "nl"},
		{"unsupported", map[string]string{"LANG": "de_DE.UTF-8"}, "en"},
		{"posix", map[string]string{"LANG": "C"}, "en"},
		{"empty", map[string]string{}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}
