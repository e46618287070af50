package engine

// Status is the session lifecycle state
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Transition is the outcome of applying a selection to a session
type Transition struct {
	From      Status
	To        Status
	Completes bool
	// Rejected is set when the session was already completed; nothing may
	// be written
	Rejected bool
}

// Advance decides the next status for a session whose merged answer set
// produced sel. It must be called before the answer is persisted so the
// answer and the status change land in one write
func Advance(current Status, sel Selection) Transition {
	if current == StatusCompleted {
		return Transition{From: current, To: current, Rejected: true}
	}
	if sel.Done() {
		return Transition{From: current, To: StatusCompleted, Completes: true}
	}
	return Transition{From: current, To: StatusInProgress}
}
