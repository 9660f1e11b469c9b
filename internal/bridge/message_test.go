package bridge

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/testutil"
)

func TestDecodeReport_FullMessage(t *testing.T) {
	// Exact wire layout the watch app sends, misspelling included
	data := []byte(`{
		"heartRate": 88,
		"hrv": 35,
		"streesScore": 61,
		"oxygen": 97,
		"respiratoryRate": 16,
		"sleepDuration": 6.5,
		"mood": "😐"
	}`)

	rep, err := DecodeReport(data)
	if err != nil {
		t.Fatalf("DecodeReport() error = %v", err)
	}

	if rep.HeartRate == nil || *rep.HeartRate != 88 {
		t.Errorf("HeartRate = %v, want 88", rep.HeartRate)
	}
	if rep.HRV == nil || *rep.HRV != 35 {
		t.Errorf("HRV = %v, want 35", rep.HRV)
	}
	if rep.Score == nil || *rep.Score != 61 {
		t.Errorf("Score = %v, want 61", rep.Score)
	}
	if rep.BloodOxygen == nil || *rep.BloodOxygen != 97 {
		t.Errorf("BloodOxygen = %v, want 97", rep.BloodOxygen)
	}
	if rep.RespiratoryRate == nil || *rep.RespiratoryRate != 16 {
		t.Errorf("RespiratoryRate = %v, want 16", rep.RespiratoryRate)
	}
	if rep.SleepHours == nil || *rep.SleepHours != 6.5 {
		t.Errorf("SleepHours = %v, want 6.5", rep.SleepHours)
	}
	if rep.Mood != "😐" {
		t.Errorf("Mood = %q, want 😐", rep.Mood)
	}
}

func TestDecodeReport_PartialMessage(t *testing.T) {
	rep, err := DecodeReport([]byte(`{"heartRate": 72, "hrv": 48}`))
	if err != nil {
		t.Fatalf("DecodeReport() error = %v", err)
	}

	if rep.HeartRate == nil || rep.HRV == nil {
		t.Error("present fields should decode")
	}
	if rep.Score != nil || rep.BloodOxygen != nil || rep.SleepHours != nil {
		t.Error("absent fields must stay nil, not zero")
	}
}

func TestDecodeReport_MoodOnly(t *testing.T) {
	rep, err := DecodeReport([]byte(`{"mood": "😊"}`))
	if err != nil {
		t.Fatalf("DecodeReport() mood-only error = %v", err)
	}
	if rep.Mood != "😊" {
		t.Errorf("Mood = %q, want 😊", rep.Mood)
	}
}

func TestDecodeReport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{heartRate: 72`},
		{"empty object", `{}`},
		{"unrelated keys only", `{"stepCount": 4000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReport([]byte(tt.data))
			if !errors.Is(err, core.ErrMalformedReport) {
				t.Errorf("DecodeReport() error = %v, want ErrMalformedReport", err)
			}
		})
	}
}

func TestDecodeReport_CorrectSpellingIsNotTheContract(t *testing.T) {
	// The watch has always sent "streesScore"; a correctly-spelled key
	// is an unknown field and must be ignored
	rep, err := DecodeReport([]byte(`{"heartRate": 70, "stressScore": 50}`))
	if err != nil {
		t.Fatalf("DecodeReport() error = %v", err)
	}
	if rep.Score != nil {
		t.Error("Score should be nil; only the literal wire key counts")
	}
}

func TestEncodeReport_WireKeys(t *testing.T) {
	data, err := EncodeReport(testutil.DeviceReportFixture())
	if err != nil {
		t.Fatalf("EncodeReport() error = %v", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("encoded report is not valid JSON: %v", err)
	}

	for _, key := range []string{
		KeyHeartRate, KeyHRV, KeyStressScore,
		KeyOxygen, KeyRespiratoryRate, KeySleepDuration, KeyMood,
	} {
		if _, ok := keys[key]; !ok {
			t.Errorf("encoded report missing wire key %q", key)
		}
	}

	if !strings.Contains(string(data), `"streesScore"`) {
		t.Error("the literal key streesScore must be preserved on the wire")
	}
}

func TestEncodeDecode_Roundtrip(t *testing.T) {
	orig := testutil.DeviceReportFixture()

	data, err := EncodeReport(orig)
	if err != nil {
		t.Fatalf("EncodeReport() error = %v", err)
	}
	rep, err := DecodeReport(data)
	if err != nil {
		t.Fatalf("DecodeReport() error = %v", err)
	}

	if *rep.HeartRate != *orig.HeartRate || *rep.Score != *orig.Score || rep.Mood != orig.Mood {
		t.Errorf("roundtrip mismatch: got %+v", rep)
	}
}
