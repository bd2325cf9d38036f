package judgingtypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLength(t *testing.T) {
	assert.Equal(t, 28*time.Minute, SessionLength)
}

func TestStageAt(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	session := &Session{Status: StatusInProgress, StartTime: &start}

	tests := []struct {
		name          string
		elapsed       time.Duration
		wantIndex     int
		wantRemaining time.Duration
		wantOK        bool
	}{
		{
			name:          "start of setup",
			elapsed:       0,
			wantIndex:     0,
			wantRemaining: 2 * time.Minute,
			wantOK:        true,
		},
		{
			name:          "middle of setup",
			elapsed:       90 * time.Second,
			wantIndex:     0,
			wantRemaining: 30 * time.Second,
			wantOK:        true,
		},
		{
			name:          "exact stage boundary belongs to the next stage",
			elapsed:       2 * time.Minute,
			wantIndex:     1,
			wantRemaining: 5 * time.Minute,
			wantOK:        true,
		},
		{
			name:          "last stage",
			elapsed:       22*time.Minute + 30*time.Second,
			wantIndex:     5,
			wantRemaining: 5*time.Minute + 30*time.Second,
			wantOK:        true,
		},
		{
			name:    "past the session length",
			elapsed: SessionLength,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, remaining, ok := session.StageAt(start.Add(tt.elapsed))
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantIndex, index)
			assert.Equal(t, tt.wantRemaining, remaining)
		})
	}

	t.Run("not started yet", func(t *testing.T) {
		_, _, ok := (&Session{Status: StatusNotStarted}).StageAt(start)
		assert.False(t, ok)
	})

	t.Run("before the recorded start time", func(t *testing.T) {
		index, remaining, ok := session.StageAt(start.Add(-time.Second))
		require.True(t, ok)
		assert.Equal(t, 0, index)
		assert.Equal(t, Stages[0].Duration, remaining)
	})

	t.Run("aborted session has no stage", func(t *testing.T) {
		aborted := &Session{Status: StatusAborted, StartTime: &start}
		_, _, ok := aborted.StageAt(start.Add(time.Minute))
		assert.False(t, ok)
	})
}
