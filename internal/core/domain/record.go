package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StopTime is the stop-date field as it arrives over the wire or out of a
// legacy export: absent, a native instant (epoch millis or a
// {seconds, nanoseconds} pair), or a date string. Unmarshalling never
// fails; unparseable input is carried as present-but-invalid so the
// rendering path can fall back to "0 days" instead of crashing.
type StopTime struct {
	value   time.Time
	present bool
	valid   bool
}

func StopTimeOf(t time.Time) StopTime {
	return StopTime{value: t.UTC(), present: true, valid: true}
}

func (st StopTime) Present() bool { return st.present }
func (st StopTime) Valid() bool   { return st.present && st.valid }

// Resolve returns the canonical instant plus a validity flag. Absent
// resolves to now (zero elapsed days, never negative); invalid input
// also resolves to now so derived counters stay at zero.
func (st StopTime) Resolve(now time.Time) (time.Time, bool) {
	if !st.present {
		return now.UTC(), true
	}
	if !st.valid {
		return now.UTC(), false
	}
	return st.value, true
}

var stopTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

func parseStopString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stopTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func (st *StopTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*st = StopTime{}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		t, ok := parseStopString(asString)
		*st = StopTime{value: t, present: true, valid: ok}
		return nil
	}

	var asMillis int64
	if err := json.Unmarshal(data, &asMillis); err == nil {
		*st = StopTime{value: time.UnixMilli(asMillis).UTC(), present: true, valid: true}
		return nil
	}

	// Firestore-export shape: {"seconds": ..., "nanoseconds": ...}
	var asInstant struct {
		Seconds     int64 `json:"seconds"`
		Nanoseconds int64 `json:"nanoseconds"`
	}
	if err := json.Unmarshal(data, &asInstant); err == nil && asInstant.Seconds != 0 {
		*st = StopTime{value: time.Unix(asInstant.Seconds, asInstant.Nanoseconds).UTC(), present: true, valid: true}
		return nil
	}

	*st = StopTime{present: true, valid: false}
	return nil
}

func (st StopTime) MarshalJSON() ([]byte, error) {
	if !st.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(st.value)
}

// Quantity is a numeric field that tolerates both JSON numbers and
// quoted numeric strings, as form-sourced payloads send either.
type Quantity struct {
	value   float64
	present bool
	valid   bool
}

func QuantityOf(v float64) Quantity {
	return Quantity{value: v, present: true, valid: true}
}

func (q Quantity) Present() bool  { return q.present }
func (q Quantity) Valid() bool    { return q.present && q.valid }
func (q Quantity) Value() float64 { return q.value }

func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*q = Quantity{}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(asString), 64)
		*q = Quantity{value: v, present: true, valid: err == nil}
		return nil
	}

	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*q = Quantity{value: asNumber, present: true, valid: true}
		return nil
	}

	*q = Quantity{present: true, valid: false}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(q.value)
}

// RawRecord is one document from a legacy export, camelCase keys and all.
type RawRecord struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"userId"`
	Name           string   `json:"name"`
	StoppedAt      StopTime `json:"stoppedAt"`
	PreviousPerDay Quantity `json:"previousPerDay"`
}

// NormalizeRecord turns a raw record into zero-or-one Habit. Records not
// owned by ownerID are dropped. Missing fields get defaults; an invalid stop date
// resolves to now so the derived day count reads zero. The bool result
// reports whether the stop date parsed cleanly, so callers can log the
// parse failure without surfacing it.
func NormalizeRecord(raw RawRecord, ownerID string, now time.Time) (*Habit, bool) {
	if raw.OwnerID != ownerID {
		return nil, true
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = DefaultHabitName
	}

	stoppedAt, parsed := raw.StoppedAt.Resolve(now)

	rate := 0.0
	if raw.PreviousPerDay.Valid() && raw.PreviousPerDay.Value() > 0 {
		rate = raw.PreviousPerDay.Value()
	}

	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Habit{
		ID:             id,
		OwnerID:        ownerID,
		Name:           name,
		StoppedAt:      stoppedAt,
		PreviousPerDay: rate,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}, parsed
}
