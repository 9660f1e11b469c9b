// Package readings holds the latest observed value of each biometric channel.
package readings

import (
	"sync"
	"time"

	"github.com/mobigaurav/pulsemind/internal/core"
)

// Aggregator keeps the most recently observed value per channel. Updates
// arrive from independent asynchronous sources (local health queries and
// companion-device reports) with no ordering guarantee between channels;
// each write is an unconditional overwrite with no timestamp comparison,
// so per channel the last writer wins. Cross-channel atomicity is not
// required: a snapshot may mix values observed at different moments, but
// it is always a consistent whole-copy, never a live view.
type Aggregator struct {
	mu       sync.RWMutex
	values   map[core.Channel]*float64
	onChange func(core.Channel)
}

// New creates an empty aggregator; every channel starts absent.
func New() *Aggregator {
	return &Aggregator{
		values: make(map[core.Channel]*float64, len(core.Channels)),
	}
}

// OnChange registers the single consumer notified after each update.
// The callback runs outside the aggregator lock.
func (a *Aggregator) OnChange(fn func(core.Channel)) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// Update overwrites the stored value for the channel. A nil value means
// the source had no sample at query time; that is a valid state, not an
// error, and it too overwrites whatever was stored before.
func (a *Aggregator) Update(ch core.Channel, value *float64) error {
	if !ch.Valid() {
		return core.ErrUnknownChannel
	}

	a.mu.Lock()
	if value == nil {
		a.values[ch] = nil
	} else {
		v := *value
		a.values[ch] = &v
	}
	fn := a.onChange
	a.mu.Unlock()

	if fn != nil {
		fn(ch)
	}
	return nil
}

// Snapshot returns a point-in-time copy of all five channel values.
// Pure read, no side effects.
func (a *Aggregator) Snapshot() core.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return core.Snapshot{
		HeartRate:       copyValue(a.values[core.ChannelHeartRate]),
		HRV:             copyValue(a.values[core.ChannelHRV]),
		RespiratoryRate: copyValue(a.values[core.ChannelRespiratoryRate]),
		BloodOxygen:     copyValue(a.values[core.ChannelBloodOxygen]),
		SleepHours:      copyValue(a.values[core.ChannelSleepDuration]),
		TakenAt:         time.Now(),
	}
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
