package service

import (
	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/store"
)

// CreateRoomRequest describes a new room
type CreateRoomRequest struct {
	HostName   string
	HostUserID string
	ScriptID   string
}

// RoomInfo identifies a room and its host-only codes
type RoomInfo struct {
	RoomID       string `json:"room_id"`
	Code         string `json:"code"`
	JoinCode     string `json:"join_code"`
	ScriptID     string `json:"script_id"`
	HostPlayerID string `json:"host_player_id"`
}

// JoinResult is returned to a player after joining
type JoinResult struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

// CreateRoom creates a room whose host is the caller
func (s *Service) CreateRoom(req CreateRoomRequest) (RoomInfo, error) {
	for {
		room, err := s.engine.NewRoom(game.CreateRoomInput{
			HostName:   req.HostName,
			HostUserID: req.HostUserID,
			ScriptID:   req.ScriptID,
			JoinCode:   s.rooms.UniqueJoinCode(),
		})
		if err != nil {
			return RoomInfo{}, err
		}
		// join codes can collide between UniqueJoinCode and Add
		if !s.rooms.Add(room) {
			continue
		}
		s.log.Info().Str("room_id", room.ID).Str("script_id", room.ScriptID).Msg("room created")
		return roomInfo(room), nil
	}
}

// RoomInfo returns the room's codes to its host
func (s *Service) RoomInfo(p models.Principal) (RoomInfo, error) {
	var info RoomInfo
	err := s.read(p, true, func(room *models.Room) error {
		info = roomInfo(room)
		return nil
	})
	return info, err
}

// JoinByCode adds a player to the room with the given join code
func (s *Service) JoinByCode(joinCode, name, userID string) (JoinResult, error) {
	room, ok := s.rooms.FindByJoinCode(joinCode)
	if !ok {
		return JoinResult{}, game.NewNotFound(game.CodeInvalidJoinCode, "no room with that join code")
	}
	return s.join(room, name, userID)
}

// JoinRoom adds a player to a room by id after checking its join code
func (s *Service) JoinRoom(roomID, joinCode, name, userID string) (JoinResult, error) {
	room, err := s.rooms.MustGet(roomID)
	if err != nil {
		return JoinResult{}, err
	}
	room.RLock()
	valid := store.NormalizeJoinCode(room.JoinCode) == store.NormalizeJoinCode(joinCode)
	room.RUnlock()
	if !valid {
		return JoinResult{}, game.NewForbidden(game.CodeInvalidJoinCode, "invalid join code")
	}
	return s.join(room, name, userID)
}

func (s *Service) join(room *models.Room, name, userID string) (JoinResult, error) {
	var result JoinResult
	err := s.mutate(models.Principal{RoomID: room.ID}, "join", false, func(room *models.Room) error {
		player, err := s.engine.AddPlayer(room, name, userID)
		if err != nil {
			return err
		}
		result = JoinResult{RoomID: room.ID, PlayerID: player.ID, Seat: player.Seat}
		return nil
	})
	return result, err
}

func roomInfo(room *models.Room) RoomInfo {
	return RoomInfo{
		RoomID:       room.ID,
		Code:         room.Code,
		JoinCode:     room.JoinCode,
		ScriptID:     room.ScriptID,
		HostPlayerID: room.HostPlayerID,
	}
}
