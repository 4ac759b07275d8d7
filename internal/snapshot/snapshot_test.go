package snapshot

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine  *game.Engine
	room    *models.Room
	script  *script.Script
	players []*models.Player
}

// newFixture seats five players with finalized roles: seat 1 imp, seat 2 drunk
// believing they are the chef, seat 3 poisoner, seat 4 monk, seat 5 empath.
func newFixture(t *testing.T) fixture {
	t.Helper()
	e := game.NewEngine(script.MustLoadBuiltin())
	next := 0
	e.NewID = func() string {
		next++
		return fmt.Sprintf("id-%03d", next)
	}
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	room, err := e.NewRoom(game.CreateRoomInput{HostName: "Host", JoinCode: "SECRET"})
	require.NoError(t, err)
	var players []*models.Player
	for i := range 5 {
		p, err := e.AddPlayer(room, fmt.Sprintf("P%d", i+1), "")
		require.NoError(t, err)
		players = append(players, p)
	}
	_, err = e.AssignRoles(room, game.AssignRequest{Finalize: true, Assignments: map[int]models.RoleAssignment{
		1: {RoleID: "imp", Attachments: []models.RoleAttachment{
			{Slot: "demon_bluff", Index: 0, RoleID: "mayor"},
			{Slot: "demon_bluff", Index: 1, RoleID: "saint"},
			{Slot: "demon_bluff", Index: 2, RoleID: "virgin"},
		}},
		2: {RoleID: "drunk", Attachments: []models.RoleAttachment{{Slot: "drunk_false_role", RoleID: "chef"}}},
		3: {RoleID: "poisoner"},
		4: {RoleID: "monk"},
		5: {RoleID: "empath"},
	}})
	require.NoError(t, err)
	s, err := e.ScriptFor(room)
	require.NoError(t, err)
	return fixture{engine: e, room: room, script: s, players: players}
}

func (f fixture) principal(i int) models.Principal {
	p := f.players[i]
	return models.Principal{RoomID: f.room.ID, PlayerID: p.ID, Seat: p.Seat}
}

func (f fixture) host() models.Principal {
	return models.HostPrincipal(f.room.ID, f.room.HostPlayerID)
}

func playerView(t *testing.T, v View, id string) PlayerView {
	t.Helper()
	for _, p := range v.Players {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("player %s missing from view", id)
	return PlayerView{}
}

func TestHostSeesEverything(t *testing.T) {
	f := newFixture(t)
	f.players[3].SetLifeStatus(models.StatusFakeDeadVote)
	f.players[3].Note = "monk protected seat 1"

	v := Build(f.room, f.script, f.host())

	assert.Equal(t, "SECRET", v.Room.JoinCode)
	assert.Equal(t, "host", v.Viewer.Role)
	require.Len(t, v.Players, 6)

	drunk := playerView(t, v, f.players[1].ID)
	require.NotNil(t, drunk.RoleSecret)
	assert.Equal(t, "drunk", drunk.RoleSecret.ID)
	require.Len(t, drunk.RoleAttachments, 1)
	assert.Equal(t, "chef", drunk.RoleAttachments[0].RoleID)

	imp := playerView(t, v, f.players[0].ID)
	assert.Len(t, imp.RoleAttachments, 3)

	monk := playerView(t, v, f.players[3].ID)
	assert.Equal(t, models.StatusFakeDeadVote, monk.LifeStatus)
	assert.True(t, monk.IsAlive)
	require.NotNil(t, monk.Note)
	assert.Equal(t, "monk protected seat 1", *monk.Note)

	require.Len(t, v.PendingAssignments, 5)
	require.NotNil(t, v.PendingMeta)
	assert.Equal(t, script.TeamCounts{"townsfolk": 2, "outsider": 1, "minion": 1, "demon": 1}, v.PendingMeta.TeamCounts)
}

func TestOtherPlayersSeeNoSecrets(t *testing.T) {
	f := newFixture(t)
	f.players[3].SetLifeStatus(models.StatusFakeDeadVote)
	f.players[4].SetLifeStatus(models.StatusFakeDeadNoVote)
	f.players[3].Note = "private"

	for _, viewer := range []models.Principal{f.principal(2), {RoomID: f.room.ID}} {
		v := Build(f.room, f.script, viewer)

		assert.Empty(t, v.Room.JoinCode)
		assert.Nil(t, v.PendingAssignments)
		assert.Nil(t, v.PendingMeta)
		for _, p := range v.Players {
			if p.Me {
				continue
			}
			assert.Nil(t, p.RoleSecret, "role of %s leaked", p.Name)
			assert.Empty(t, p.RoleAttachments, "attachments of %s leaked", p.Name)
			assert.Nil(t, p.Note)
			assert.NotEqual(t, models.StatusFakeDeadVote, p.LifeStatus)
			assert.NotEqual(t, models.StatusFakeDeadNoVote, p.LifeStatus)
		}

		monk := playerView(t, v, f.players[3].ID)
		assert.Equal(t, models.StatusDeadVote, monk.LifeStatus)
		assert.False(t, monk.IsAlive, "fake-dead players look dead")
		assert.True(t, monk.GhostVoteAvailable)

		empath := playerView(t, v, f.players[4].ID)
		assert.Equal(t, models.StatusDeadNoVote, empath.LifeStatus)
		assert.False(t, empath.GhostVoteAvailable)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body := string(raw)
		assert.NotContains(t, body, "SECRET")
		assert.NotContains(t, body, "fake_dead")
		assert.NotContains(t, body, "private")
	}
}

func TestSelfSeesOwnRawStatus(t *testing.T) {
	f := newFixture(t)
	f.players[3].SetLifeStatus(models.StatusFakeDeadNoVote)

	v := Build(f.room, f.script, f.principal(3))
	me := playerView(t, v, f.players[3].ID)
	assert.True(t, me.Me)
	assert.Equal(t, models.StatusFakeDeadNoVote, me.LifeStatus)
	assert.True(t, me.IsAlive)
	require.NotNil(t, me.RoleSecret)
	assert.Equal(t, "monk", me.RoleSecret.ID)
	assert.Nil(t, me.Note, "notes are host-only")
	assert.Equal(t, 4, v.Viewer.Seat)
}

func TestReplacePrimaryIllusion(t *testing.T) {
	f := newFixture(t)

	v := Build(f.room, f.script, f.principal(1))
	me := playerView(t, v, f.players[1].ID)
	require.NotNil(t, me.RoleSecret)
	assert.Equal(t, "chef", me.RoleSecret.ID)
	assert.Equal(t, script.TeamTownsfolk, me.RoleSecret.Team)
	assert.Empty(t, me.RoleAttachments, "the replacing slot is hidden from its owner")

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"role_id":"drunk"`)
}

func TestDemonSeesOwnBluffs(t *testing.T) {
	f := newFixture(t)
	v := Build(f.room, f.script, f.principal(0))
	me := playerView(t, v, f.players[0].ID)
	require.NotNil(t, me.RoleSecret)
	assert.Equal(t, "imp", me.RoleSecret.ID)
	require.Len(t, me.RoleAttachments, 3)
	assert.Equal(t, []string{"mayor", "saint", "virgin"}, []string{
		me.RoleAttachments[0].RoleID, me.RoleAttachments[1].RoleID, me.RoleAttachments[2].RoleID,
	})
}

func TestSeatConflictFlag(t *testing.T) {
	f := newFixture(t)
	f.players[4].Seat = 4
	v := Build(f.room, f.script, f.principal(0))
	assert.True(t, playerView(t, v, f.players[3].ID).SeatConflict)
	assert.True(t, playerView(t, v, f.players[4].ID).SeatConflict)
	assert.False(t, playerView(t, v, f.players[0].ID).SeatConflict)
}

func TestVoteStateIsPublic(t *testing.T) {
	f := newFixture(t)
	e := f.engine
	_, err := e.ChangePhase(f.room, models.PhaseNight)
	require.NoError(t, err)
	_, err = e.ChangePhase(f.room, models.PhaseDay)
	require.NoError(t, err)
	f.players[4].SetLifeStatus(models.StatusDeadNoVote)

	nom, err := e.Nominate(f.room, 3, 1)
	require.NoError(t, err)
	_, err = e.StartVote(f.room, nom.ID)
	require.NoError(t, err)
	_, err = e.CastVote(f.room, nom.ID, f.players[3].ID, true)
	require.NoError(t, err)
	_, err = e.RecordExecution(f.room, nom.ID, nil, nil)
	require.NoError(t, err)

	v := Build(f.room, f.script, models.Principal{RoomID: f.room.ID})
	require.NotNil(t, v.VoteSession)
	order := v.VoteSession.Order
	require.Len(t, order, 5)
	assert.Equal(t, []int{4, 5, 1, 2, 3}, []int{order[0].Seat, order[1].Seat, order[2].Seat, order[3].Seat, order[4].Seat})
	require.NotNil(t, order[0].Value)
	assert.True(t, *order[0].Value)
	require.NotNil(t, order[1].Value, "ineligible voter was auto-skipped")
	assert.False(t, *order[1].Value)
	assert.False(t, order[1].CanVote)
	assert.Nil(t, order[2].Value)
	assert.Equal(t, f.players[0].ID, v.VoteSession.CurrentPlayerID)

	require.Len(t, v.Nominations, 1)
	require.Len(t, v.Nominations[0].Votes, 2)
	assert.True(t, v.Nominations[0].Votes[1].Auto)

	require.Len(t, v.Executions, 1)
	assert.Equal(t, 1, v.Executions[0].VotesFor)
}

func TestBuildDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.players[1].SetLifeStatus(models.StatusFakeDeadVote)
	before := *f.players[1]
	beforeAtts := append([]models.RoleAttachment(nil), f.players[1].Attachments...)
	logs := len(f.room.Logs)

	_ = Build(f.room, f.script, f.principal(1))
	_ = Build(f.room, f.script, f.principal(2))
	_ = Build(f.room, f.script, f.host())

	assert.Equal(t, before.LifeStatus, f.players[1].LifeStatus)
	assert.Equal(t, before.RoleID, f.players[1].RoleID)
	assert.Equal(t, beforeAtts, f.players[1].Attachments)
	assert.Len(t, f.room.Logs, logs)
}

func TestScriptPayloadTracksSeatedCount(t *testing.T) {
	f := newFixture(t)
	v := Build(f.room, f.script, f.principal(0))
	assert.Equal(t, 5, v.Script.PlayerCount)
	assert.Equal(t, 3, v.Script.TeamCounts[script.TeamTownsfolk])
	assert.Equal(t, "sample_trouble", v.Script.ID)
	assert.NotEmpty(t, v.Script.Roles)
}

func TestBuildExport(t *testing.T) {
	f := newFixture(t)
	export := BuildExport(f.room)
	assert.Equal(t, f.room.ID, export.Room.ID)
	assert.Equal(t, models.PhaseLobby, export.Room.Phase)
	require.Len(t, export.Logs, len(f.room.Logs))
	assert.Equal(t, game.LogRoomCreated, export.Logs[0].Kind)
	assert.Equal(t, game.LogRolesAssigned, export.Logs[len(export.Logs)-1].Kind)
}
