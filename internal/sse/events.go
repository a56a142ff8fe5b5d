package sse

// SSE event type constants
const (
	// EventChanged tells observers to re-fetch the game aggregate. The
	// payload carries no state; the pull path is the source of truth.
	EventChanged = "game-changed"
)

// SubscriberBuffer is the channel buffer per SSE subscriber. A subscriber
// that falls further behind than this simply drops notifications; the next
// one catches it up.
const SubscriberBuffer = 10
