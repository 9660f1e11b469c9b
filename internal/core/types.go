// Package core defines the fundamental types and errors for PulseMind.
package core

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies one biometric measurement stream.
type Channel string

const (
	ChannelHeartRate       Channel = "heart_rate"       // beats/minute
	ChannelHRV             Channel = "hrv"              // milliseconds (SDNN)
	ChannelRespiratoryRate Channel = "respiratory_rate" // breaths/minute
	ChannelBloodOxygen     Channel = "blood_oxygen"     // percent, 0-100
	ChannelSleepDuration   Channel = "sleep_duration"   // hours
)

// Channels lists every biometric channel in a fixed order.
var Channels = []Channel{
	ChannelHeartRate,
	ChannelHRV,
	ChannelRespiratoryRate,
	ChannelBloodOxygen,
	ChannelSleepDuration,
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelHeartRate, ChannelHRV, ChannelRespiratoryRate,
		ChannelBloodOxygen, ChannelSleepDuration:
		return true
	}
	return false
}

// Snapshot is a point-in-time capture of all five channel values.
// A nil field means no sample has been observed for that channel yet;
// absence is a valid state, not a failure. A snapshot may legitimately
// mix values observed at different moments.
type Snapshot struct {
	HeartRate       *float64  `json:"heart_rate,omitempty"`
	HRV             *float64  `json:"hrv,omitempty"`
	RespiratoryRate *float64  `json:"respiratory_rate,omitempty"`
	BloodOxygen     *float64  `json:"blood_oxygen,omitempty"`
	SleepHours      *float64  `json:"sleep_hours,omitempty"`
	TakenAt         time.Time `json:"taken_at"`
}

// ScoreInsufficient is the sentinel stress score meaning "could not be
// computed". It is a domain value, not an error: consumers render it as
// "no score to display", never as zero, and it is never persisted.
const ScoreInsufficient = -1

// DailyScore is one persisted stress score for one local calendar day.
// At most one record exists per day; the first writer for a day wins and
// the record is never updated afterwards.
type DailyScore struct {
	ID        int64     `json:"id"`
	Day       time.Time `json:"day"` // normalized to local start-of-day
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalEntry is a free-text journal record with an optional mood tag.
// Mood-only entries (empty text) are created for moods relayed from the
// companion device.
type JournalEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	Mood      string    `json:"mood"`
}

// NewJournalEntry creates an entry with a fresh id and timestamp.
func NewJournalEntry(text, mood string) *JournalEntry {
	return &JournalEntry{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Text:      text,
		Mood:      mood,
	}
}

// DeviceReport is one decoded message from the companion device. Any
// subset of fields may be present; Score is the device's own precomputed
// stress score, shown until the phone-side pipeline recomputes.
type DeviceReport struct {
	HeartRate       *float64
	HRV             *float64
	RespiratoryRate *float64
	BloodOxygen     *float64
	SleepHours      *float64
	Score           *int
	Mood            string
}

// StartOfDay normalizes t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
