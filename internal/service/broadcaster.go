package service

import (
	"context"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
}

// Publisher sends domain events to a message broker
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// WebSocket message types
const (
	MsgAnswerRecorded   = "answer_recorded"
	MsgSessionCompleted = "session_completed"
	MsgInsightReady     = "insight_ready"
)
