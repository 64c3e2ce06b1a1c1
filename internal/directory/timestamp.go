package directory

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are the string forms accepted for a Timestamp, tried in
// order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp is a payload time that decodes leniently: RFC 3339, date-only
// and zone-less strings, or epoch milliseconds. Empty, null and unparseable
// values decode to the zero Timestamp, which reads as absent.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp parses s with the accepted layouts. ok is false when no
// layout matches.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Timestamp{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*t, _ = ParseTimestamp(s)
		return nil
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		*t = Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
