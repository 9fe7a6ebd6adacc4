package types

import "time"

// Pipeline stages reported through the progress store. A record at
// StageComplete is terminal: either Result or Error is set, never both.
const (
	StageAccepted  = "accepted"
	StagePlaces    = "places"
	StageItinerary = "itinerary"
	StageParsing   = "parsing"
	StageResolving = "resolving"
	StageSummary   = "summary"
	StageComplete  = "complete"
)

// ProgressRecord is the polled state of one background generation job.
type ProgressRecord struct {
	RequestID                 string    `json:"request_id"`
	Stage                     string    `json:"stage"`
	Percent                   int       `json:"percent"`
	Message                   string    `json:"message"`
	EstimatedSecondsRemaining *int      `json:"estimated_seconds_remaining,omitempty"`
	Result                    *Trip     `json:"result,omitempty"`
	Error                     string    `json:"error,omitempty"`
	StartedAt                 time.Time `json:"started_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Terminal reports whether the job reached its final state.
func (p *ProgressRecord) Terminal() bool {
	return p.Stage == StageComplete
}
