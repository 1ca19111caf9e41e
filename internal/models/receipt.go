package models

import "time"

// Outcome classifies what happened to one uploaded row.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Receipt is the audit entry written for each row sent to the repository.
// It never carries the API token.
type Receipt struct {
	RunID      string    `bson:"run_id" json:"run_id"`
	Row        int       `bson:"row" json:"row"`
	ProjectID  string    `bson:"project_id" json:"project_id"`
	Title      string    `bson:"title" json:"title"`
	StatusCode int       `bson:"status_code" json:"status_code"`
	Outcome    Outcome   `bson:"outcome" json:"outcome"`
	Response   string    `bson:"response,omitempty" json:"response,omitempty"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
