package garden

import (
	"encoding/json"
	"strings"
	"time"
)

// timestampLayouts are tried in order when decoding stored timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a stored instant that keeps its original text.
//
// Values that fail to parse hold the zero instant, which orders before every
// real timestamp. The raw text is preserved so it can still be displayed.
type Timestamp struct {
	raw string
	t   time.Time
}

// NewTimestamp returns a Timestamp for t, formatted as RFC 3339 in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.UTC().Format(time.RFC3339Nano), t: t.UTC()}
}

// ParseTimestamp parses s. It never fails; unparsable input yields the zero
// instant.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{raw: s}
	trimmed := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			ts.t = t.UTC()
			break
		}
	}
	return ts
}

// Time returns the parsed instant, or the zero time if parsing failed.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Valid reports whether the timestamp parsed to a real instant.
func (ts Timestamp) Valid() bool {
	return !ts.t.IsZero()
}

// Before reports whether ts orders strictly before other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// String returns the original text.
func (ts Timestamp) String() string {
	if ts.raw == "" && !ts.t.IsZero() {
		return ts.t.Format(time.RFC3339Nano)
	}
	return ts.raw
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.raw == "" && ts.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

// UnmarshalJSON implements json.Unmarshaler. Non-string values decode to the
// zero instant rather than failing the whole document.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*ts = Timestamp{}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}
