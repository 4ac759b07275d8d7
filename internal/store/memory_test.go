package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(id, joinCode string) *models.Room {
	return models.NewRoom(id, "code-"+id, joinCode, "sample_trouble", time.Now())
}

func TestRoomStoreIndexes(t *testing.T) {
	s := NewRoomStore()
	room := newRoom("r1", "ABC234")
	require.True(t, s.Add(room))

	got, ok := s.Get("r1")
	require.True(t, ok)
	assert.Same(t, room, got)

	got, ok = s.FindByJoinCode(" abc234 ")
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = s.FindByJoinCode("ZZZZZZ")
	assert.False(t, ok)

	assert.False(t, s.Add(newRoom("r1", "XYZ234")), "duplicate id")
	assert.False(t, s.Add(newRoom("r2", "abc234")), "duplicate join code")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.JoinCodeExists("ABC234"))
}

func TestRoomStoreMustGet(t *testing.T) {
	s := NewRoomStore()
	_, err := s.MustGet("missing")
	assert.True(t, errors.Is(err, game.ErrNotFound))
	assert.Equal(t, game.CodeRoomNotFound, game.CodeOf(err))
}

func TestUniqueJoinCode(t *testing.T) {
	s := NewRoomStore()
	for i := range 50 {
		code := s.UniqueJoinCode()
		assert.Len(t, code, game.JoinCodeLength)
		require.True(t, s.Add(newRoom(fmt.Sprintf("r%d", i), code)))
	}
	assert.Equal(t, 50, s.Len())
}

func TestRoomStoreConcurrentAdds(t *testing.T) {
	s := NewRoomStore()
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(newRoom(fmt.Sprintf("r%03d", i), fmt.Sprintf("C%05d", i)))
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}
