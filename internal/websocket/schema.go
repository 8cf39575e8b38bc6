package websocket

import "github.com/stemsi/classwork-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventSubscribed Event = "subscribed"
	EventSubmission Event = "submission"
	EventPong       Event = "pong"
)

// SubscribedResponse confirms the feed is live.
type SubscribedResponse struct {
	Event        Event  `json:"event"`
	AssignmentID string `json:"assignment_id"`
}

// SubmissionResponse carries one submitted or graded event.
type SubmissionResponse struct {
	Event      Event                 `json:"event"`
	Submission model.SubmissionEvent `json:"submission"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
