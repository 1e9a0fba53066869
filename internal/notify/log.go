package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes events to the structured log. It is the default sink
// when no Redis address is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(_ context.Context, ev Event) error {
	n.log.Info().
		Str("kind", string(ev.Kind)).
		Str("row_id", ev.RowID).
		Str("patient", ev.Patient).
		Str("doctor", ev.Doctor).
		Str("start_time", ev.StartTime).
		Int("minutes_left", ev.MinutesLeft).
		Strs("assistants", ev.Assistants).
		Msg("dashboard event")
	return nil
}
