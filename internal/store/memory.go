package store

import (
	"strings"
	"sync"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
)

// RoomStore is the room registry: rooms indexed by id and by join code.
// Rooms are added on creation and live for the lifetime of the process.
type RoomStore struct {
	rooms     map[string]*models.Room
	joinCodes map[string]string // join code -> room id
	mu        sync.RWMutex
}

// NewRoomStore creates an empty room store
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:     make(map[string]*models.Room),
		joinCodes: make(map[string]string),
	}
}

// Get retrieves a room by id
func (s *RoomStore) Get(id string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[id]
	return room, exists
}

// MustGet retrieves a room by id or returns a not-found error
func (s *RoomStore) MustGet(id string) (*models.Room, error) {
	room, ok := s.Get(id)
	if !ok {
		return nil, game.NewNotFound(game.CodeRoomNotFound, "room %s not found", id)
	}
	return room, nil
}

// FindByJoinCode retrieves a room by its join code, ignoring case
func (s *RoomStore) FindByJoinCode(code string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinCodes[NormalizeJoinCode(code)]
	if !ok {
		return nil, false
	}
	room, exists := s.rooms[id]
	return room, exists
}

// Add stores a room and indexes its join code. It returns false if the id or join code is taken.
func (s *RoomStore) Add(room *models.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := NormalizeJoinCode(room.JoinCode)
	if _, exists := s.rooms[room.ID]; exists {
		return false
	}
	if _, exists := s.joinCodes[code]; exists {
		return false
	}
	s.rooms[room.ID] = room
	s.joinCodes[code] = room.ID
	return true
}

// JoinCodeExists checks if a join code is in use
func (s *RoomStore) JoinCodeExists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.joinCodes[NormalizeJoinCode(code)]
	return exists
}

// UniqueJoinCode generates a join code that isn't currently in use
func (s *RoomStore) UniqueJoinCode() string {
	for {
		code := game.GenerateJoinCode()
		if !s.JoinCodeExists(code) {
			return code
		}
	}
}

// Len returns the number of rooms
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// NormalizeJoinCode is the form join codes are indexed and compared in
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
