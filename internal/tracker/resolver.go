package tracker

import "time"

// Resolve projects the effective status of one dose at a point in time.
//
// Recorded terminal statuses are returned untouched. A pending record
// behaves exactly like the absence of a record: the dose stays pending
// until the grace period after its scheduled time has elapsed, then it
// reads as missed. Nothing is written back, the projection happens on
// every read so the stored log never needs a background sweep.
func Resolve(stored Status, hasRecord bool, scheduledAt, now time.Time, grace time.Duration) Status {
	if hasRecord && stored.IsTerminal() {
		return stored
	}
	if now.Before(scheduledAt) {
		return StatusPending
	}
	if now.After(scheduledAt.Add(grace)) {
		return StatusMissed
	}
	return StatusPending
}
