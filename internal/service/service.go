// Package service is the room service facade. Each method resolves the room,
// holds its lock for the duration of the engine call and notifies listeners
// after a successful mutation.
package service

import (
	"context"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/history"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/aaronzipp/grimoire/internal/store"
	"github.com/rs/zerolog"
)

// Notifier is told about every successful room mutation
type Notifier interface {
	RoomChanged(roomID string)
}

// Archive stores finished games
type Archive interface {
	SaveRecord(ctx context.Context, roomID, scriptID, result string, data any) (history.Record, error)
	LatestRecords(ctx context.Context, limit int) ([]history.Record, error)
}

type nopNotifier struct{}

func (nopNotifier) RoomChanged(string) {}

// Service exposes one method per room operation
type Service struct {
	rooms    *store.RoomStore
	engine   *game.Engine
	notifier Notifier
	archive  Archive
	log      zerolog.Logger
}

// New creates a service. notifier and archive may be nil.
func New(rooms *store.RoomStore, engine *game.Engine, notifier Notifier, archive Archive, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		rooms:    rooms,
		engine:   engine,
		notifier: notifier,
		archive:  archive,
		log:      log.With().Str("component", "service").Logger(),
	}
}

// ListScripts returns the known scripts
func (s *Service) ListScripts() []script.Summary {
	return s.engine.Scripts.List()
}

// ResolvePrincipal maps a session player id to a principal for the room.
// Unknown or empty ids resolve to an anonymous viewer.
func (s *Service) ResolvePrincipal(roomID, playerID string) (models.Principal, error) {
	room, err := s.rooms.MustGet(roomID)
	if err != nil {
		return models.Principal{}, err
	}
	room.RLock()
	defer room.RUnlock()

	p, ok := room.Players[playerID]
	if !ok {
		return models.Principal{RoomID: roomID}, nil
	}
	return models.Principal{
		RoomID:   roomID,
		PlayerID: p.ID,
		Seat:     p.Seat,
		IsHost:   p.IsHost || p.ID == room.HostPlayerID,
	}, nil
}

// mutate runs fn under the room's write lock and notifies listeners on success
func (s *Service) mutate(p models.Principal, op string, hostOnly bool, fn func(room *models.Room) error) error {
	room, err := s.rooms.MustGet(p.RoomID)
	if err != nil {
		return err
	}
	room.Lock()
	err = s.authorize(room, p, hostOnly)
	if err == nil {
		err = fn(room)
	}
	room.Unlock()

	if err != nil {
		s.log.Debug().Err(err).Str("room_id", p.RoomID).Str("op", op).Str("code", string(game.CodeOf(err))).Msg("operation rejected")
		return err
	}
	s.log.Info().Str("room_id", p.RoomID).Str("op", op).Str("principal", p.Role()).Msg("room updated")
	s.notifier.RoomChanged(p.RoomID)
	return nil
}

// read runs fn under the room's read lock
func (s *Service) read(p models.Principal, hostOnly bool, fn func(room *models.Room) error) error {
	room, err := s.rooms.MustGet(p.RoomID)
	if err != nil {
		return err
	}
	room.RLock()
	defer room.RUnlock()
	if err := s.authorize(room, p, hostOnly); err != nil {
		return err
	}
	return fn(room)
}

// authorize checks the principal against the room it claims to belong to
func (s *Service) authorize(room *models.Room, p models.Principal, hostOnly bool) error {
	if p.PlayerID != "" {
		player, ok := room.Players[p.PlayerID]
		if !ok {
			return game.NewForbidden(game.CodeNotInRoom, "player is not in this room")
		}
		if p.IsHost && !player.IsHost {
			return game.NewForbidden(game.CodeHostOnly, "player is not the host of this room")
		}
	}
	if hostOnly && !p.IsHost {
		return game.NewForbidden(game.CodeHostOnly, "only the host can do that")
	}
	return nil
}

func requirePlayer(p models.Principal) error {
	if p.PlayerID == "" && !p.IsHost {
		return game.NewForbidden(game.CodeNotInRoom, "join the room first")
	}
	return nil
}
