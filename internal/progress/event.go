// Package progress carries the ordered stream of run events from the
// pipeline to whoever is watching it.
package progress

import "github.com/sells-group/derm-scout/internal/model"

// Type tags an event.
type Type string

const (
	TypePhase    Type = "phase"
	TypeProgress Type = "progress"
	TypeComplete Type = "complete"
	TypeError    Type = "error"
)

// Event is one entry of the progress stream. Phase events carry a label,
// progress events a processed/total pair, and the terminal event either a
// result or an error.
type Event struct {
	Type      Type             `json:"type"`
	RunID     string           `json:"run_id,omitempty"`
	Phase     int              `json:"phase,omitempty"`
	Label     string           `json:"label,omitempty"`
	Count     int              `json:"count,omitempty"`
	Processed int              `json:"processed,omitempty"`
	Total     int              `json:"total,omitempty"`
	Candidate string           `json:"candidate,omitempty"`
	Tier      model.Tier       `json:"tier,omitempty"`
	Result    *model.RunResult `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Terminal reports whether e ends a stream.
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}

// PhaseEvent builds a phase transition event.
func PhaseEvent(phase int, label string) Event {
	return Event{Type: TypePhase, Phase: phase, Label: label}
}

// ProgressEvent builds a counter event.
func ProgressEvent(phase, processed, total int) Event {
	return Event{Type: TypeProgress, Phase: phase, Processed: processed, Total: total}
}
