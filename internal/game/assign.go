package game

import (
	"maps"
	"slices"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/random"
	"github.com/aaronzipp/grimoire/internal/script"
)

// AssignRequest selects between random generation, staging a host-supplied
// mapping, and finalizing onto the seated players.
type AssignRequest struct {
	Seed        string
	Assignments map[int]models.RoleAssignment
	Finalize    bool
}

// AssignRoles produces or commits a seat->role mapping. Without assignments a
// random mapping is generated from the seed. Supplied assignments are staged
// after partial validation and auto-fill. Finalize validates full coverage and
// commits to every seated player. Nothing is mutated on error.
func (e *Engine) AssignRoles(room *models.Room, req AssignRequest) (map[int]models.RoleAssignment, error) {
	s, err := e.ScriptFor(room)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Finalize:
		return e.finalizeAssignments(room, s, req.Assignments)
	case req.Assignments != nil:
		validated, err := ValidateAssignments(room, s, req.Assignments, false)
		if err != nil {
			return nil, err
		}
		seed := room.Seed
		if seed == "" {
			if seed, err = e.NewSeed(); err != nil {
				return nil, err
			}
		}
		FillAttachments(s, validated, e.NewSource(seed))
		room.Seed = seed
		room.PendingAssignments = validated
		return cloneAssignments(validated), nil
	default:
		seed := req.Seed
		if seed == "" {
			if seed, err = e.NewSeed(); err != nil {
				return nil, err
			}
		}
		generated, err := GenerateAssignments(room, s, e.NewSource(seed))
		if err != nil {
			return nil, err
		}
		room.Seed = seed
		room.PendingAssignments = generated
		return cloneAssignments(generated), nil
	}
}

func (e *Engine) finalizeAssignments(room *models.Room, s *script.Script, supplied map[int]models.RoleAssignment) (map[int]models.RoleAssignment, error) {
	source := supplied
	if len(source) == 0 {
		source = room.PendingAssignments
	}
	if len(source) == 0 {
		return nil, invalid(CodeNothingToFinalize, "no role assignment to finalize")
	}
	validated, err := ValidateAssignments(room, s, source, true)
	if err != nil {
		return nil, err
	}
	if err := EnsureSeatingReady(room); err != nil {
		return nil, err
	}

	for _, p := range room.ListPlayers() {
		if p.Seat <= 0 {
			continue
		}
		bundle, ok := validated[p.Seat]
		if !ok {
			p.RoleID = ""
			p.Attachments = nil
			continue
		}
		p.RoleID = bundle.RoleID
		p.Attachments = slices.Clone(bundle.Attachments)
	}
	room.PendingAssignments = validated

	roles := make(map[int]any, len(validated))
	for seat, bundle := range validated {
		atts := make([]map[string]any, 0, len(bundle.Attachments))
		for _, a := range bundle.Attachments {
			atts = append(atts, map[string]any{"slot": a.Slot, "index": a.Index, "role": a.RoleID})
		}
		roles[seat] = map[string]any{"role": bundle.RoleID, "attachments": atts}
	}
	e.appendLog(room, LogRolesAssigned, map[string]any{"seed": room.Seed, "player_roles": roles})
	return cloneAssignments(validated), nil
}

// GenerateAssignments draws one role per seated player honoring the script's
// team quota, topping up from leftover roles when the quota is short.
func GenerateAssignments(room *models.Room, s *script.Script, src random.Source) (map[int]models.RoleAssignment, error) {
	players := room.SeatedPlayers()
	if len(players) == 0 {
		return nil, invalid(CodeNoPlayers, "at least one seated player is required to assign roles")
	}
	if len(s.Roles) < len(players) {
		return nil, invalid(CodeNotEnoughRoles, "script has %d roles for %d players", len(s.Roles), len(players))
	}

	counts := s.ResolveTeamCounts(len(players))
	teams := s.Teams(slices.Sorted(maps.Keys(counts))...)

	byTeam := make(map[string][]*script.Role)
	for _, r := range s.Roles {
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}
	for _, team := range teams {
		random.Shuffle(src, byTeam[team])
	}

	selected := make([]*script.Role, 0, len(players))
	for _, team := range teams {
		want := counts[team]
		if want <= 0 {
			continue
		}
		available := byTeam[team]
		if len(available) < want {
			return nil, invalid(CodeNotEnoughRoles, "script has only %d %s roles, %d required", len(available), team, want)
		}
		selected = append(selected, available[:want]...)
		byTeam[team] = available[want:]
	}

	if short := len(players) - len(selected); short > 0 {
		var leftovers []*script.Role
		for _, team := range teams {
			leftovers = append(leftovers, byTeam[team]...)
		}
		if len(leftovers) < short {
			return nil, invalid(CodeNotEnoughRoles, "script does not have enough roles for %d players", len(players))
		}
		random.Shuffle(src, leftovers)
		selected = append(selected, leftovers[:short]...)
	}

	random.Shuffle(src, selected)
	assigned := make(map[int]models.RoleAssignment, len(players))
	for i, p := range players {
		if i >= len(selected) {
			break
		}
		assigned[p.Seat] = models.RoleAssignment{RoleID: selected[i].ID}
	}

	FillAttachments(s, assigned, src)
	return assigned, nil
}

func cloneAssignments(in map[int]models.RoleAssignment) map[int]models.RoleAssignment {
	out := make(map[int]models.RoleAssignment, len(in))
	for seat, a := range in {
		out[seat] = a.Clone()
	}
	return out
}
