package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Ключи настроек клиента. Простые строки, last-write-wins.
const (
	PrefDarkMode    = "dark_mode"
	PrefSoundAlerts = "sound_alerts"
	PrefAdminAuthed = "admin_authed"
)

// Prefs — долговременное key→string хранилище настроек клиента.
type Prefs struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenPrefs загружает настройки из path (отсутствующий файл — пустые настройки).
func OpenPrefs(path string) (*Prefs, error) {
	p := &Prefs{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "session.OpenPrefs: read")
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		return nil, errors.Wrap(err, "session.OpenPrefs: parse")
	}
	return p, nil
}

func (p *Prefs) Get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key]
}

// Set сохраняет значение и сразу пишет файл.
func (p *Prefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "session.Prefs.Set: marshal")
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return errors.Wrap(err, "session.Prefs.Set: mkdir")
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return errors.Wrap(err, "session.Prefs.Set: write")
	}
	return nil
}
