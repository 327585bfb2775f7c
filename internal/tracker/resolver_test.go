package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	grace := 2 * time.Hour
	scheduled := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	clock := func(hour, min, sec int) time.Time {
		return time.Date(2026, 8, 30, hour, min, sec, 0, time.UTC)
	}

	tests := []struct {
		name      string
		stored    Status
		hasRecord bool
		now       time.Time
		want      Status
	}{
		{"future dose is pending", "", false, clock(8, 0, 0), StatusPending},
		{"inside grace is pending", "", false, clock(10, 59, 59), StatusPending},
		{"exact deadline is still pending", "", false, clock(11, 0, 0), StatusPending},
		{"past deadline is missed", "", false, clock(11, 0, 1), StatusMissed},
		{"taken survives the deadline", StatusTaken, true, clock(23, 0, 0), StatusTaken},
		{"skipped survives the deadline", StatusSkipped, true, clock(23, 0, 0), StatusSkipped},
		{"recorded missed stays missed before deadline", StatusMissed, true, clock(9, 30, 0), StatusMissed},
		{"stored pending promotes to missed", StatusPending, true, clock(12, 0, 0), StatusMissed},
		{"stored pending stays pending inside grace", StatusPending, true, clock(10, 0, 0), StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.stored, tt.hasRecord, scheduled, tt.now, grace)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveZeroGrace(t *testing.T) {
	scheduled := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	got := Resolve("", false, scheduled, scheduled.Add(time.Second), 0)
	assert.Equal(t, StatusMissed, got)

	got = Resolve("", false, scheduled, scheduled, 0)
	assert.Equal(t, StatusPending, got)
}
