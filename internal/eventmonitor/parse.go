// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package eventmonitor

import (
	"encoding/json"
	"strings"

	"github.com/chanwatch/sidecar/internal/detect"
)

// rawEvent mirrors the upstream SSE JSON shape exactly: capitalized
// Type/Name/Value keys (original_source/core/alerts/channel_watching.py
// reads event_data.get("Type"|"Name"|"Value")).
type rawEvent struct {
	Type  string `json:"Type"`
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// parseLine decodes one line of the event stream (spec §4.1: "parsed as
// JSON directly, or as data:<json> if SSE-framed"). Returns false for a
// blank line or one that fails to decode either way.
func parseLine(line string) (detect.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return detect.Event{}, false
	}

	payload := line
	if rest, ok := strings.CutPrefix(line, "data:"); ok {
		payload = strings.TrimSpace(rest)
	}
	if payload == "" {
		return detect.Event{}, false
	}

	var raw rawEvent
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return detect.Event{}, false
	}
	return detect.Event{Type: raw.Type, Name: raw.Name, Value: raw.Value}, true
}
