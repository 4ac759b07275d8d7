package sse

// SSE event type constants
const (
	EventSnapshot     = "snapshot"
	EventErrorMessage = "error-message"
)

// Message is one event queued for a listener
type Message struct {
	Event string
	Data  []byte
}
