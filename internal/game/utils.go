package game

import (
	crand "crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/random"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/google/uuid"
)

// Engine applies room operations to a room aggregate. Callers must hold the
// room's write lock for every method that takes a *models.Room.
type Engine struct {
	Scripts   *script.Catalog
	Now       func() time.Time
	NewID     func() string
	NewSeed   func() (string, error)
	NewSource random.Factory
	NewToken  func(n int) (string, error)
}

// NewEngine returns an engine using wall-clock time, UUIDs and crypto seeds
func NewEngine(scripts *script.Catalog) *Engine {
	return &Engine{
		Scripts:   scripts,
		Now:       time.Now,
		NewID:     newID,
		NewSeed:   random.NewSeed,
		NewSource: random.NewSource,
		NewToken:  random.Token,
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ScriptFor returns the script a room was created with
func (e *Engine) ScriptFor(room *models.Room) (*script.Script, error) {
	s, ok := e.Scripts.Get(room.ScriptID)
	if !ok {
		return nil, notFound(CodeScriptNotFound, "unknown script id %s", room.ScriptID)
	}
	return s, nil
}

func (e *Engine) appendLog(room *models.Room, kind string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	room.Logs = append(room.Logs, models.LogEntry{
		ID:      e.NewID(),
		At:      e.Now(),
		Kind:    kind,
		Payload: payload,
	})
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return "", invalid(CodeInvalidName, "name must be 1-%d characters", MaxNameLength)
	}
	return name, nil
}

// GenerateJoinCode creates a random join code players can type by hand
func GenerateJoinCode() string {
	code := make([]byte, JoinCodeLength)
	for i := range JoinCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(JoinCodeChars))))
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		code[i] = JoinCodeChars[n.Int64()]
	}
	return string(code)
}
