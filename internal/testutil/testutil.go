// Package testutil provides shared helpers for PulseMind tests.
package testutil

import (
	"github.com/mobigaurav/pulsemind/internal/core"
)

// Ptr returns a pointer to v; handy for optional readings in fixtures.
func Ptr[T any](v T) *T { return &v }

// FullSnapshot returns a snapshot with every channel populated.
func FullSnapshot() core.Snapshot {
	return core.Snapshot{
		HeartRate:       Ptr(72.0),
		HRV:             Ptr(55.0),
		RespiratoryRate: Ptr(14.0),
		BloodOxygen:     Ptr(98.0),
		SleepHours:      Ptr(7.0),
	}
}

// DeviceReportFixture returns a fully-populated companion device report.
func DeviceReportFixture() core.DeviceReport {
	return core.DeviceReport{
		HeartRate:       Ptr(88.0),
		HRV:             Ptr(35.0),
		RespiratoryRate: Ptr(16.0),
		BloodOxygen:     Ptr(97.0),
		SleepHours:      Ptr(6.5),
		Score:           Ptr(61),
		Mood:            "😐",
	}
}
