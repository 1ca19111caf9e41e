package pipeline

import (
	"time"

	"rdrupload/internal/models"
)

// Summary represents aggregated upload results
type Summary struct {
	// TotalRecords is the number of rows in the file
	TotalRecords int

	// Created is the number of rows the service accepted
	Created int

	// Rejected is the number of rows the service answered with an error body
	Rejected int

	// Failed is the number of rows whose request never got a response
	Failed int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Add counts one row's outcome.
func (s *Summary) Add(outcome models.Outcome) {
	switch outcome {
	case models.OutcomeCreated:
		s.Created++
	case models.OutcomeRejected:
		s.Rejected++
	case models.OutcomeFailed:
		s.Failed++
	}
}

// Attempted returns how many rows were sent.
func (s *Summary) Attempted() int {
	return s.Created + s.Rejected + s.Failed
}

// Finalize completes the summary calculation
func (s *Summary) Finalize() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}
