package game

import (
	"cmp"
	"maps"
	"slices"

	"github.com/aaronzipp/grimoire/internal/models"
	"github.com/aaronzipp/grimoire/internal/random"
	"github.com/aaronzipp/grimoire/internal/script"
)

// ValidateAssignments checks a seat->assignment mapping against the script's
// role table and each role's slot declarations, returning a normalized copy
// with attachments sorted by (slot, index). requireFull demands every slot
// index be populated.
func ValidateAssignments(room *models.Room, s *script.Script, assignments map[int]models.RoleAssignment, requireFull bool) (map[int]models.RoleAssignment, error) {
	validated := make(map[int]models.RoleAssignment, len(assignments))
	for _, seat := range slices.Sorted(maps.Keys(assignments)) {
		bundle := assignments[seat]
		if seat <= 0 {
			return nil, invalid(CodeInvalidSeat, "seat %d is not a table seat", seat)
		}
		if room.PlayerBySeat(seat) == nil {
			return nil, notFound(CodePlayerNotFound, "no player in seat %d", seat)
		}
		role, ok := s.Role(bundle.RoleID)
		if !ok {
			return nil, invalid(CodeUnknownRole, "unknown role id %s", bundle.RoleID)
		}

		entries := make(map[string]map[int]string)
		for _, att := range bundle.Attachments {
			slot, ok := role.Slot(att.Slot)
			if !ok {
				return nil, invalid(CodeUnknownSlot, "%s has no %s slot", role.Name, att.Slot)
			}
			if att.Index < 0 || att.Index >= slot.Size() {
				return nil, invalid(CodeSlotIndexOutOfRange, "%s %s index %d out of range", role.Name, att.Slot, att.Index)
			}
			attached, ok := s.Role(att.RoleID)
			if !ok {
				return nil, invalid(CodeUnknownRole, "unknown role id %s", att.RoleID)
			}
			if !slot.Accepts(attached.Team) {
				return nil, invalid(CodeSlotTeamMismatch, "%s %s must be a %v role", role.Name, slotLabel(slot), slot.TeamFilter)
			}
			if entries[att.Slot] == nil {
				entries[att.Slot] = make(map[int]string)
			}
			entries[att.Slot][att.Index] = att.RoleID
		}

		var normalized []models.RoleAttachment
		for _, slot := range role.AttachmentSlots {
			filled := entries[slot.ID]
			if requireFull && len(filled) < slot.Size() {
				return nil, invalid(CodeSlotIncomplete, "%s is missing %s", role.Name, slotLabel(slot))
			}
			if !slot.AllowDuplicates {
				values := slices.Sorted(maps.Values(filled))
				if len(slices.Compact(values)) != len(filled) {
					return nil, invalid(CodeSlotDuplicate, "%s %s cannot repeat a role", role.Name, slotLabel(slot))
				}
			}
			for index := range slot.Size() {
				if roleID, ok := filled[index]; ok {
					normalized = append(normalized, models.RoleAttachment{Slot: slot.ID, Index: index, RoleID: roleID})
				}
			}
		}
		sortAttachments(normalized)
		validated[seat] = models.RoleAssignment{RoleID: role.ID, Attachments: normalized}
	}
	return validated, nil
}

// FillAttachments fills every unfilled slot index from roles not used as a
// primary role and not already attached, honoring team filters. Slots are
// left unfilled when no candidate remains.
func FillAttachments(s *script.Script, assignments map[int]models.RoleAssignment, src random.Source) {
	teams := s.Teams()
	pool := attachmentPool(s, assignments)

	for _, seat := range slices.Sorted(maps.Keys(assignments)) {
		bundle := assignments[seat]
		role, ok := s.Role(bundle.RoleID)
		if !ok {
			continue
		}
		for _, slot := range role.AttachmentSlots {
			for index := range slot.Size() {
				if hasAttachment(bundle.Attachments, slot.ID, index) {
					continue
				}
				var candidates []string
				for _, team := range teams {
					if slot.Accepts(team) {
						candidates = append(candidates, pool[team]...)
					}
				}
				if len(candidates) == 0 {
					continue
				}
				roleID := random.Choice(src, candidates)
				if !slot.AllowDuplicates {
					if picked, ok := s.Role(roleID); ok {
						pool[picked.Team] = remove(pool[picked.Team], roleID)
					}
				}
				bundle.Attachments = append(bundle.Attachments, models.RoleAttachment{Slot: slot.ID, Index: index, RoleID: roleID})
			}
		}
		sortAttachments(bundle.Attachments)
		assignments[seat] = bundle
	}
}

// attachmentPool groups candidate role ids by team, in script order
func attachmentPool(s *script.Script, assignments map[int]models.RoleAssignment) map[string][]string {
	primary := make(map[string]bool)
	for _, bundle := range assignments {
		primary[bundle.RoleID] = true
	}
	pool := make(map[string][]string)
	for _, r := range s.Roles {
		if !primary[r.ID] {
			pool[r.Team] = append(pool[r.Team], r.ID)
		}
	}
	for _, bundle := range assignments {
		for _, att := range bundle.Attachments {
			if r, ok := s.Role(att.RoleID); ok {
				pool[r.Team] = remove(pool[r.Team], att.RoleID)
			}
		}
	}
	return pool
}

func hasAttachment(atts []models.RoleAttachment, slot string, index int) bool {
	return slices.ContainsFunc(atts, func(a models.RoleAttachment) bool {
		return a.Slot == slot && a.Index == index
	})
}

func remove(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

func sortAttachments(atts []models.RoleAttachment) {
	slices.SortFunc(atts, func(a, b models.RoleAttachment) int {
		return cmp.Or(cmp.Compare(a.Slot, b.Slot), cmp.Compare(a.Index, b.Index))
	})
}

func slotLabel(slot script.AttachmentSlot) string {
	if slot.Label != "" {
		return slot.Label
	}
	return slot.ID
}
