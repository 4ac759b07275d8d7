package snapshot

import "github.com/aaronzipp/grimoire/internal/models"

// Export is the host's full audit export of a room
type Export struct {
	Room ExportHeader      `json:"room"`
	Logs []models.LogEntry `json:"logs"`
}

// ExportHeader identifies the exported room
type ExportHeader struct {
	ID       string       `json:"id"`
	ScriptID string       `json:"script_id"`
	Phase    models.Phase `json:"phase"`
	Day      int          `json:"day"`
	Night    int          `json:"night"`
}

// BuildExport copies the room header and every log entry. The caller must hold the room's read lock.
func BuildExport(room *models.Room) Export {
	logs := make([]models.LogEntry, len(room.Logs))
	copy(logs, room.Logs)
	return Export{
		Room: ExportHeader{
			ID:       room.ID,
			ScriptID: room.ScriptID,
			Phase:    room.Phase,
			Day:      room.Day,
			Night:    room.Night,
		},
		Logs: logs,
	}
}
