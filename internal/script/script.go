// Package script holds the read-only Script Catalog: role definitions,
// per-script team quotas and the declarative attachment-slot rules.
package script

import (
	"maps"
	"slices"
)

// Teams in display order
const (
	TeamTownsfolk = "townsfolk"
	TeamOutsider  = "outsider"
	TeamMinion    = "minion"
	TeamDemon     = "demon"
)

// TeamOrder is the canonical order teams are processed and displayed in
var TeamOrder = []string{TeamTownsfolk, TeamOutsider, TeamMinion, TeamDemon}

// OwnerViewReplacePrimary marks a slot whose index-0 role is shown to the owner as their primary role
const OwnerViewReplacePrimary = "replace_primary"

// AttachmentSlot declares an extra hidden role fact a role may carry
type AttachmentSlot struct {
	ID              string   `json:"id"`
	Label           string   `json:"label,omitempty"`
	Count           int      `json:"count,omitempty"`
	TeamFilter      []string `json:"team_filter,omitempty"`
	AllowDuplicates bool     `json:"allow_duplicates,omitempty"`
	OwnerView       string   `json:"owner_view,omitempty"`
}

// Size returns the number of indexes in the slot (defaults to 1)
func (s AttachmentSlot) Size() int {
	if s.Count <= 0 {
		return 1
	}
	return s.Count
}

// Accepts reports whether a role of the given team may fill the slot
func (s AttachmentSlot) Accepts(team string) bool {
	return len(s.TeamFilter) == 0 || slices.Contains(s.TeamFilter, team)
}

// ReplacesPrimary reports whether the owner sees this slot's role instead of their own
func (s AttachmentSlot) ReplacesPrimary() bool {
	return s.OwnerView == OwnerViewReplacePrimary
}

// Role is a character a seat can be assigned
type Role struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Team            string            `json:"team"`
	Tags            []string          `json:"tags,omitempty"`
	NameLocalized   map[string]string `json:"name_localized,omitempty"`
	Description     string            `json:"description,omitempty"`
	AttachmentSlots []AttachmentSlot  `json:"attachment_slots,omitempty"`
}

// Slot looks up one of the role's attachment slots by id
func (r *Role) Slot(id string) (AttachmentSlot, bool) {
	for _, s := range r.AttachmentSlots {
		if s.ID == id {
			return s, true
		}
	}
	return AttachmentSlot{}, false
}

// TeamCounts maps a team to the number of seats it should fill
type TeamCounts map[string]int

// Rules are script-level game options
type Rules struct {
	VoteThreshold           string `json:"vote_threshold"`
	TieRule                 string `json:"tie_rule"`
	StorytellerWinAvailable bool   `json:"storyteller_win_available"`
}

// Script is one game variant: an ordered role list and a quota table
type Script struct {
	ID               string
	Name             string
	Version          string
	Roles            []*Role
	TeamDistribution map[int]TeamCounts
	Rules            Rules
	byID             map[string]*Role
}

// Summary is the listing view of a script
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Summary returns the listing view of the script
func (s *Script) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Version: s.Version}
}

// Role looks up a role of this script by id
func (s *Script) Role(id string) (*Role, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// ResolveTeamCounts returns the quota for a seated player count: the exact
// entry if present, else the highest key not above count, else the lowest key.
// A script without a quota table counts every role of each team.
func (s *Script) ResolveTeamCounts(playerCount int) TeamCounts {
	if len(s.TeamDistribution) == 0 {
		counts := make(TeamCounts)
		for _, r := range s.Roles {
			counts[r.Team]++
		}
		return counts
	}
	if counts, ok := s.TeamDistribution[playerCount]; ok {
		return maps.Clone(counts)
	}
	keys := slices.Sorted(maps.Keys(s.TeamDistribution))
	fallback := keys[0]
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] <= playerCount {
			fallback = keys[i]
			break
		}
	}
	return maps.Clone(s.TeamDistribution[fallback])
}

// Teams returns the teams present in counts or the role list, canonical teams first
func (s *Script) Teams(extra ...string) []string {
	seen := make(map[string]bool)
	var teams []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			teams = append(teams, t)
		}
	}
	for _, t := range TeamOrder {
		add(t)
	}
	var rest []string
	for _, r := range s.Roles {
		if !seen[r.Team] && !slices.Contains(rest, r.Team) {
			rest = append(rest, r.Team)
		}
	}
	for _, t := range extra {
		if !seen[t] && !slices.Contains(rest, t) {
			rest = append(rest, t)
		}
	}
	slices.Sort(rest)
	for _, t := range rest {
		add(t)
	}
	return teams
}
