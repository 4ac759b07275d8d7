package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/stretchr/testify/require"
)

// newTestEngine returns an engine with a ticking clock and sequential ids
func newTestEngine() *Engine {
	e := NewEngine(script.MustLoadBuiltin())
	clock := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	e.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	next := 0
	e.NewID = func() string {
		next++
		return fmt.Sprintf("id-%03d", next)
	}
	e.NewSeed = func() (string, error) { return "fixed-seed", nil }
	return e
}

// newTestRoom creates a room on the default script with n seated players
func newTestRoom(t *testing.T, e *Engine, n int) (*models.Room, []*models.Player) {
	t.Helper()
	room, err := e.NewRoom(CreateRoomInput{HostName: "Host"})
	require.NoError(t, err)
	players := make([]*models.Player, 0, n)
	for i := range n {
		p, err := e.AddPlayer(room, fmt.Sprintf("P%d", i+1), "")
		require.NoError(t, err)
		players = append(players, p)
	}
	return room, players
}

func startDay(t *testing.T, e *Engine, room *models.Room) {
	t.Helper()
	_, err := e.ChangePhase(room, models.PhaseNight)
	require.NoError(t, err)
	_, err = e.ChangePhase(room, models.PhaseDay)
	require.NoError(t, err)
}

func seats(room *models.Room, order []string) []int {
	out := make([]int, 0, len(order))
	for _, id := range order {
		out = append(out, room.Players[id].Seat)
	}
	return out
}
