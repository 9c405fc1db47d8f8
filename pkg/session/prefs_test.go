package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	p, err := OpenPrefs(path)
	require.NoError(t, err)
	assert.Empty(t, p.Get(PrefDarkMode))

	require.NoError(t, p.Set(PrefDarkMode, "true"))
	require.NoError(t, p.Set(PrefSoundAlerts, "false"))
	assert.Equal(t, "true", p.Get(PrefDarkMode))

	reopened, err := OpenPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, "true", reopened.Get(PrefDarkMode))
	assert.Equal(t, "false", reopened.Get(PrefSoundAlerts))
}

func TestPrefsLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := OpenPrefs(path)
	require.NoError(t, err)

	require.NoError(t, p.Set(PrefAdminAuthed, "true"))
	require.NoError(t, p.Set(PrefAdminAuthed, "false"))
	assert.Equal(t, "false", p.Get(PrefAdminAuthed))
}
