package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerNotifiesListeners(t *testing.T) {
	tracker := NewTracker()
	assert.Equal(t, StageScanning, tracker.Stage())

	var events []Event
	tracker.AddListener(func(e Event) {
		events = append(events, e)
	})

	tracker.SetStage(StagePlanning, "computing plan")
	tracker.File(StageCopying, 1, 3, "/mnt/phone/a.mp3", nil)
	tracker.Fail(errors.New("boom"))

	require.Len(t, events, 3)
	assert.Equal(t, StagePlanning, events[0].Stage)
	assert.Equal(t, "computing plan", events[0].Message)

	assert.Equal(t, StageCopying, events[1].Stage)
	assert.Equal(t, 1, events[1].Index)
	assert.Equal(t, 3, events[1].Total)
	assert.Equal(t, "/mnt/phone/a.mp3", events[1].Path)

	assert.Equal(t, StageError, events[2].Stage)
	assert.Equal(t, StageError, tracker.Stage())
}
