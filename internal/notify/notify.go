// Package notify fans dashboard events out to the front desk: appointment
// reminders, ongoing/upcoming transitions, and schedule updates.
package notify

import "context"

// Kind classifies a dashboard event.
type Kind string

const (
	KindReminder Kind = "reminder"
	KindOngoing  Kind = "ongoing"
	KindUpcoming Kind = "upcoming"
	KindUpdated  Kind = "schedule_updated"
)

// Event is one notification. RowID is the stable row identifier; delivery is
// idempotent per row because the reminder engine auto-snoozes after emitting.
type Event struct {
	Kind        Kind     `json:"kind"`
	RowID       string   `json:"row_id,omitempty"`
	Patient     string   `json:"patient,omitempty"`
	Doctor      string   `json:"doctor,omitempty"`
	Chair       string   `json:"chair,omitempty"`
	Procedure   string   `json:"procedure,omitempty"`
	StartTime   string   `json:"start_time,omitempty"`
	MinutesLeft int      `json:"minutes_left,omitempty"`
	Assistants  []string `json:"assistants,omitempty"`
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers to every notifier, returning the first error after trying
// them all.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, n := range f {
		if err := n.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
