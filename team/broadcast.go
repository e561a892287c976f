package team

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter joins the broadcast fields on the wire. Display names and stable
// identifiers must not contain it.
const Delimiter = "_"

// ErrMalformedBroadcast wraps every ParseBroadcast failure.
var ErrMalformedBroadcast = errors.New("malformed broadcast")

// Broadcast is a signed identity claim: "<name>_<timestamp_ms>_<stable_id>_<tag>".
type Broadcast struct {
	DisplayName string
	TimestampMs int64
	StableID    string
	Tag         string
}

// Payload is the signed portion of the claim, everything but the tag.
func (b Broadcast) Payload() string {
	return claimPayload(b.DisplayName, b.TimestampMs, b.StableID)
}

func (b Broadcast) String() string {
	return b.Payload() + Delimiter + b.Tag
}

func claimPayload(name string, ts int64, stableID string) string {
	return strings.Join([]string{name, strconv.FormatInt(ts, 10), stableID}, Delimiter)
}

// ParseBroadcast decodes a message body into a Broadcast. It never returns a
// partially filled value: either every field parsed or the error is set.
func ParseBroadcast(body string) (Broadcast, error) {
	if !strings.Contains(body, Delimiter) {
		return Broadcast{}, fmt.Errorf("%w: no delimiter", ErrMalformedBroadcast)
	}
	parts := strings.Split(body, Delimiter)
	if len(parts) != 4 {
		return Broadcast{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedBroadcast, len(parts))
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Broadcast{}, fmt.Errorf("%w: timestamp %q", ErrMalformedBroadcast, parts[1])
	}
	for i, p := range parts {
		if p == "" {
			return Broadcast{}, fmt.Errorf("%w: field %d empty", ErrMalformedBroadcast, i)
		}
	}
	return Broadcast{
		DisplayName: parts[0],
		TimestampMs: ts,
		StableID:    parts[2],
		Tag:         parts[3],
	}, nil
}
