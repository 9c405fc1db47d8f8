// Package session хранит долговременную идентичность посетителя и его
// настройки между запусками клиента.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const idFileName = "session_id"

// Identity выдаёт стабильный идентификатор сессии: создаётся лениво при
// первом обращении и переживает перезапуски, пока не очищено хранилище.
type Identity struct {
	mu   sync.Mutex
	path string
}

// NewIdentity хранит идентификатор в dir (создаётся при необходимости).
func NewIdentity(dir string) *Identity {
	return &Identity{path: filepath.Join(dir, idFileName)}
}

// DefaultDir — каталог состояния клиента в профиле пользователя.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "session.DefaultDir")
	}
	return filepath.Join(base, "support-service"), nil
}

// GetOrCreate возвращает сохранённый идентификатор либо создаёт новый.
// Повторные вызовы возвращают одно и то же значение.
func (i *Identity) GetOrCreate() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	data, err := os.ReadFile(i.path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "session.GetOrCreate: read")
	}

	id := newSessionID()
	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return "", errors.Wrap(err, "session.GetOrCreate: mkdir")
	}
	if err := os.WriteFile(i.path, []byte(id+"\n"), 0o600); err != nil {
		return "", errors.Wrap(err, "session.GetOrCreate: write")
	}
	return id, nil
}

func newSessionID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
