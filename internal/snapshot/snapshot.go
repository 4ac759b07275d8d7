// Package snapshot builds the per-viewer view of a room. It is the single
// place that decides which secrets a principal may see.
package snapshot

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/script"
)

// View is everything one principal is allowed to see of a room
type View struct {
	Room               RoomView               `json:"room"`
	Viewer             ViewerView             `json:"viewer"`
	Players            []PlayerView           `json:"players"`
	Nominations        []NominationView       `json:"nominations"`
	Script             ScriptView             `json:"script"`
	PendingAssignments map[int]AssignmentView `json:"pending_assignments,omitempty"`
	PendingMeta        *PendingMeta           `json:"pending_assignments_meta,omitempty"`
	VoteSession        *VoteSessionView       `json:"vote_session,omitempty"`
	Executions         []ExecutionView        `json:"executions,omitempty"`
}

// RoomView holds the room header. JoinCode is host-only.
type RoomView struct {
	ID         string             `json:"id"`
	Phase      models.Phase       `json:"phase"`
	Day        int                `json:"day"`
	Night      int                `json:"night"`
	ScriptID   string             `json:"script_id"`
	GameResult *models.GameResult `json:"game_result"`
	JoinCode   string             `json:"join_code,omitempty"`
}

// ViewerView describes who the snapshot was built for
type ViewerView struct {
	PlayerID string `json:"player_id,omitempty"`
	Seat     int    `json:"seat"`
	Role     string `json:"role"`
}

// PlayerView is one player as seen by the viewer
type PlayerView struct {
	ID                 string            `json:"id"`
	Seat               int               `json:"seat"`
	Name               string            `json:"name"`
	IsAlive            bool              `json:"is_alive"`
	Me                 bool              `json:"me"`
	IsHost             bool              `json:"is_host"`
	IsBot              bool              `json:"is_bot"`
	GhostVoteUsed      bool              `json:"ghost_vote_used"`
	GhostVoteAvailable bool              `json:"ghost_vote_available"`
	LifeStatus         models.LifeStatus `json:"life_status"`
	SeatConflict       bool              `json:"seat_conflict,omitempty"`
	Note               *string           `json:"note,omitempty"`
	RoleSecret         *RoleView         `json:"role_secret,omitempty"`
	RoleAttachments    []AttachmentView  `json:"role_attachments,omitempty"`
}

// RoleView is the display form of a role
type RoleView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	NameLocalized map[string]string `json:"name_localized,omitempty"`
	Team          string            `json:"team"`
}

// AttachmentView is one attachment with its resolved role
type AttachmentView struct {
	Slot      string    `json:"slot"`
	SlotLabel string    `json:"slot_label,omitempty"`
	Index     int       `json:"index"`
	RoleID    string    `json:"role_id"`
	Role      *RoleView `json:"role"`
}

// AssignmentView is a staged seat assignment
type AssignmentView struct {
	RoleID      string           `json:"role_id"`
	Role        *RoleView        `json:"role"`
	Attachments []AttachmentView `json:"attachments"`
}

// PendingMeta summarizes the staged assignment
type PendingMeta struct {
	TeamCounts script.TeamCounts `json:"team_counts"`
}

// VoteView is one ballot on a nomination
type VoteView struct {
	Voter    int    `json:"voter"`
	PlayerID string `json:"player_id"`
	Value    bool   `json:"value"`
	Auto     bool   `json:"auto"`
}

// NominationView is a nomination with its ballots
type NominationView struct {
	ID            string     `json:"id"`
	Day           int        `json:"day"`
	Nominee       int        `json:"nominee"`
	By            int        `json:"by"`
	CreatedAt     time.Time  `json:"ts"`
	Confirmed     bool       `json:"confirmed"`
	VoteStarted   bool       `json:"vote_started"`
	VoteCompleted bool       `json:"vote_completed"`
	Votes         []VoteView `json:"votes"`
	ManualTotal   *int       `json:"manual_total"`
}

// VoteSessionView is the public state of the active vote
type VoteSessionView struct {
	NominationID    string          `json:"nomination_id"`
	CurrentPlayerID string          `json:"current_player_id,omitempty"`
	Finished        bool            `json:"finished"`
	Order           []VoteOrderView `json:"order"`
}

// VoteOrderView is one entry of the voter order
type VoteOrderView struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Value    *bool  `json:"value"`
	CanVote  bool   `json:"can_vote"`
}

// ExecutionView is one day's execution outcome
type ExecutionView struct {
	Day          int       `json:"day"`
	Nominee      *int      `json:"nominee"`
	Executed     *int      `json:"executed"`
	VotesFor     int       `json:"votes_for"`
	AliveCount   int       `json:"alive_count"`
	NominationID string    `json:"nomination_id,omitempty"`
	TargetDead   *bool     `json:"target_dead"`
	RecordedAt   time.Time `json:"ts"`
}

// ScriptView is the script reference data plus the quota for the current table size
type ScriptView struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Version          string                    `json:"version"`
	Rules            script.Rules              `json:"rules"`
	PlayerCount      int                       `json:"player_count"`
	TeamCounts       script.TeamCounts         `json:"team_counts"`
	TeamDistribution map[int]script.TeamCounts `json:"team_distribution"`
	Roles            []*script.Role            `json:"roles"`
}

// Build returns the room as seen by principal. The caller must hold at least
// the room's read lock; Build never mutates the room.
func Build(room *models.Room, s *script.Script, principal models.Principal) View {
	var me *models.Player
	if principal.PlayerID != "" {
		me = room.Players[principal.PlayerID]
	}
	isHost := principal.IsHost

	conflicts := game.SeatConflicts(room)
	ordered := room.ListPlayers()
	seated := 0
	for _, p := range ordered {
		if p.Seat > 0 {
			seated++
		}
	}

	view := View{
		Room: RoomView{
			ID:         room.ID,
			Phase:      room.Phase,
			Day:        room.Day,
			Night:      room.Night,
			ScriptID:   room.ScriptID,
			GameResult: copyResult(room.GameResult),
		},
		Viewer:      ViewerView{Role: principal.Role()},
		Players:     make([]PlayerView, 0, len(ordered)),
		Nominations: make([]NominationView, 0, len(room.Nominations)),
		Script:      scriptView(s, seated),
	}
	if me != nil {
		view.Viewer.PlayerID = me.ID
		view.Viewer.Seat = me.Seat
	}

	for _, p := range ordered {
		self := me != nil && p.ID == me.ID
		status := p.LifeStatus
		if !isHost && !self {
			status = status.Public()
		}
		entry := PlayerView{
			ID:                 p.ID,
			Seat:               p.Seat,
			Name:               p.Name,
			IsAlive:            status.IsAlive(),
			Me:                 self,
			IsHost:             p.IsHost,
			IsBot:              p.IsBot,
			GhostVoteUsed:      p.GhostVoteUsed,
			GhostVoteAvailable: !p.GhostVoteUsed,
			LifeStatus:         status,
			SeatConflict:       p.Seat > 0 && conflicts[p.Seat],
		}
		base := lookupRole(s, p.RoleID)
		switch {
		case isHost:
			note := p.Note
			entry.Note = &note
			entry.RoleSecret = roleView(base)
			entry.RoleAttachments = attachmentViews(s, base, p.Attachments, false)
		case self:
			entry.RoleSecret = roleView(ownerVisibleRole(s, base, p.Attachments))
			entry.RoleAttachments = attachmentViews(s, base, p.Attachments, true)
		}
		view.Players = append(view.Players, entry)
	}

	votes := make(map[string][]VoteView)
	sorted := slices.Clone(room.Votes)
	slices.SortStableFunc(sorted, func(a, b *models.Vote) int { return a.CastAt.Compare(b.CastAt) })
	for _, v := range sorted {
		votes[v.NominationID] = append(votes[v.NominationID], VoteView{
			Voter:    v.VoterSeat,
			PlayerID: v.PlayerID,
			Value:    v.Value,
			Auto:     v.Auto,
		})
	}
	for _, n := range room.Nominations {
		ballots := votes[n.ID]
		if ballots == nil {
			ballots = []VoteView{}
		}
		view.Nominations = append(view.Nominations, NominationView{
			ID:            n.ID,
			Day:           n.Day,
			Nominee:       n.NomineeSeat,
			By:            n.NominatorSeat,
			CreatedAt:     n.CreatedAt,
			Confirmed:     n.Confirmed,
			VoteStarted:   n.VoteStarted,
			VoteCompleted: n.VoteCompleted,
			Votes:         ballots,
			ManualTotal:   copyInt(n.ManualVoteTotal),
		})
	}

	if isHost {
		view.Room.JoinCode = room.JoinCode
		if len(room.PendingAssignments) > 0 {
			view.PendingAssignments = make(map[int]AssignmentView, len(room.PendingAssignments))
			counts := make(script.TeamCounts)
			for _, team := range script.TeamOrder {
				counts[team] = 0
			}
			for seat, bundle := range room.PendingAssignments {
				base := lookupRole(s, bundle.RoleID)
				view.PendingAssignments[seat] = AssignmentView{
					RoleID:      bundle.RoleID,
					Role:        roleView(base),
					Attachments: attachmentViews(s, base, bundle.Attachments, false),
				}
				if base != nil {
					counts[base.Team]++
				}
			}
			view.PendingMeta = &PendingMeta{TeamCounts: counts}
		}
	}

	if session := room.VoteSession; session != nil {
		sv := &VoteSessionView{
			NominationID:    session.NominationID,
			CurrentPlayerID: session.CurrentPlayerID(),
			Finished:        session.Finished,
			Order:           make([]VoteOrderView, 0, len(session.Order)),
		}
		for _, id := range session.Order {
			entry := VoteOrderView{PlayerID: id}
			if value, ok := session.Votes[id]; ok {
				entry.Value = &value
			}
			if p, ok := room.Players[id]; ok {
				entry.Seat = p.Seat
				entry.Name = p.Name
				entry.CanVote = p.CanVote()
			}
			sv.Order = append(sv.Order, entry)
		}
		view.VoteSession = sv
	}

	if len(room.Executions) > 0 {
		records := slices.Clone(room.Executions)
		slices.SortStableFunc(records, func(a, b models.ExecutionRecord) int { return cmp.Compare(a.Day, b.Day) })
		for _, r := range records {
			view.Executions = append(view.Executions, NewExecutionView(r))
		}
	}
	return view
}

// NewExecutionView copies an execution record into its public shape
func NewExecutionView(r models.ExecutionRecord) ExecutionView {
	return ExecutionView{
		Day:          r.Day,
		Nominee:      copyInt(r.NomineeSeat),
		Executed:     copyInt(r.ExecutedSeat),
		VotesFor:     r.VotesFor,
		AliveCount:   r.AliveCount,
		NominationID: r.NominationID,
		TargetDead:   copyBool(r.TargetDead),
		RecordedAt:   r.RecordedAt,
	}
}

// ownerVisibleRole returns the role the owner believes they hold
func ownerVisibleRole(s *script.Script, base *script.Role, attachments []models.RoleAttachment) *script.Role {
	if base == nil {
		return nil
	}
	for _, slot := range base.AttachmentSlots {
		if !slot.ReplacesPrimary() {
			continue
		}
		for _, a := range attachments {
			if a.Slot == slot.ID && a.Index == 0 {
				return lookupRole(s, a.RoleID)
			}
		}
	}
	return base
}

func attachmentViews(s *script.Script, base *script.Role, attachments []models.RoleAttachment, hideOwnerSlots bool) []AttachmentView {
	sorted := slices.Clone(attachments)
	slices.SortFunc(sorted, func(a, b models.RoleAttachment) int {
		return cmp.Or(cmp.Compare(a.Slot, b.Slot), cmp.Compare(a.Index, b.Index))
	})
	var out []AttachmentView
	for _, a := range sorted {
		var slot script.AttachmentSlot
		known := false
		if base != nil {
			slot, known = base.Slot(a.Slot)
		}
		if hideOwnerSlots && known && slot.ReplacesPrimary() {
			continue
		}
		out = append(out, AttachmentView{
			Slot:      a.Slot,
			SlotLabel: slot.Label,
			Index:     a.Index,
			RoleID:    a.RoleID,
			Role:      roleView(lookupRole(s, a.RoleID)),
		})
	}
	return out
}

func scriptView(s *script.Script, playerCount int) ScriptView {
	return ScriptView{
		ID:               s.ID,
		Name:             s.Name,
		Version:          s.Version,
		Rules:            s.Rules,
		PlayerCount:      playerCount,
		TeamCounts:       s.ResolveTeamCounts(playerCount),
		TeamDistribution: maps.Clone(s.TeamDistribution),
		Roles:            s.Roles,
	}
}

func lookupRole(s *script.Script, id string) *script.Role {
	if id == "" {
		return nil
	}
	r, _ := s.Role(id)
	return r
}

func roleView(r *script.Role) *RoleView {
	if r == nil {
		return nil
	}
	return &RoleView{ID: r.ID, Name: r.Name, NameLocalized: r.NameLocalized, Team: r.Team}
}

func copyResult(r *models.GameResult) *models.GameResult {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
