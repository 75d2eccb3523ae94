package presentation

import (
	"time"

	"github.com/zjrosen/treelights/internal/journal"
)

// StepDTO is one event of a simulated run, stamped with its offset from the
// start of the run.
type StepDTO struct {
	At      string `json:"at" yaml:"at"`
	Type    string `json:"type" yaml:"type"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// NewStep builds a StepDTO. Offsets render as "+2s".
func NewStep(offset time.Duration, eventType, payload string) StepDTO {
	return StepDTO{
		At:      "+" + offset.String(),
		Type:    eventType,
		Payload: payload,
	}
}

// EntryDTO represents a recorded journal entry for presentation
type EntryDTO struct {
	Seq     int64  `json:"seq" yaml:"seq"`
	Session string `json:"session" yaml:"session"`
	At      string `json:"at" yaml:"at"`
	Type    string `json:"type" yaml:"type"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// SessionDTO represents a recorded session for presentation
type SessionDTO struct {
	ID        string `json:"id" yaml:"id"`
	StartedAt string `json:"started_at" yaml:"started_at"`
	StartMode string `json:"start_mode" yaml:"start_mode"`
	Cycle     string `json:"cycle" yaml:"cycle"`
	Events    int64  `json:"events" yaml:"events"`
}

// FromJournalEntries converts journal entries to DTOs.
func FromJournalEntries(entries []journal.Entry) []EntryDTO {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, EntryDTO{
			Seq:     e.Seq,
			Session: e.Session,
			At:      e.At.Format(time.RFC3339Nano),
			Type:    e.Type,
			Payload: e.Payload,
		})
	}
	return dtos
}

// FromJournalSessions converts journal sessions to DTOs.
func FromJournalSessions(sessions []journal.SessionInfo) []SessionDTO {
	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, SessionDTO{
			ID:        s.ID,
			StartedAt: s.StartedAt.Format(time.RFC3339),
			StartMode: s.StartMode,
			Cycle:     s.Cycle.String(),
			Events:    s.Events,
		})
	}
	return dtos
}
