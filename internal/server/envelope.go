package server

import (
	"encoding/json"
	"fmt"

	"github.com/kevpoker/holdemd/internal/game"
)

// marshalEvent wraps an event in the wire envelope: the event's own fields
// plus an "info" tag naming the event type.
func marshalEvent(ev game.Event) ([]byte, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ev.Info(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ev.Info(), err)
	}
	fields["info"] = json.RawMessage(`"` + ev.Info() + `"`)

	return json.Marshal(fields)
}
