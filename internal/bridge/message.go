// Package bridge relays biometric reports from the wrist companion app.
package bridge

import (
	"encoding/json"

	"github.com/mobigaurav/pulsemind/internal/core"
)

// Wire keys of the companion report. These are a fixed contract with the
// watch app and must be preserved byte-for-byte, including the
// misspelled "streesScore" the watch has always sent.
const (
	KeyHeartRate       = "heartRate"
	KeyHRV             = "hrv"
	KeyStressScore     = "streesScore"
	KeyOxygen          = "oxygen"
	KeyRespiratoryRate = "respiratoryRate"
	KeySleepDuration   = "sleepDuration"
	KeyMood            = "mood"
)

// wireReport mirrors the watch message layout; every field is optional.
type wireReport struct {
	HeartRate       *float64 `json:"heartRate,omitempty"`
	HRV             *float64 `json:"hrv,omitempty"`
	StressScore     *int     `json:"streesScore,omitempty"`
	Oxygen          *float64 `json:"oxygen,omitempty"`
	RespiratoryRate *float64 `json:"respiratoryRate,omitempty"`
	SleepDuration   *float64 `json:"sleepDuration,omitempty"`
	Mood            string   `json:"mood,omitempty"`
}

// DecodeReport parses one companion message. A report carrying no
// recognized field at all is malformed; a mood-only message is valid.
func DecodeReport(data []byte) (core.DeviceReport, error) {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return core.DeviceReport{}, core.ErrMalformedReport
	}

	rep := core.DeviceReport{
		HeartRate:       w.HeartRate,
		HRV:             w.HRV,
		RespiratoryRate: w.RespiratoryRate,
		BloodOxygen:     w.Oxygen,
		SleepHours:      w.SleepDuration,
		Score:           w.StressScore,
		Mood:            w.Mood,
	}

	if rep.HeartRate == nil && rep.HRV == nil && rep.RespiratoryRate == nil &&
		rep.BloodOxygen == nil && rep.SleepHours == nil && rep.Score == nil &&
		rep.Mood == "" {
		return core.DeviceReport{}, core.ErrMalformedReport
	}

	return rep, nil
}

// EncodeReport renders a report in the wire layout. The daemon itself
// only decodes; this exists for the watch simulator and tests.
func EncodeReport(rep core.DeviceReport) ([]byte, error) {
	return json.Marshal(wireReport{
		HeartRate:       rep.HeartRate,
		HRV:             rep.HRV,
		StressScore:     rep.Score,
		Oxygen:          rep.BloodOxygen,
		RespiratoryRate: rep.RespiratoryRate,
		SleepDuration:   rep.SleepHours,
		Mood:            rep.Mood,
	})
}
