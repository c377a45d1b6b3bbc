package progress

import (
	"sync"
	"time"
)

// Stage represents the current stage of a freshening run.
type Stage string

const (
	StageScanning  Stage = "scanning"
	StageInventory Stage = "inventory"
	StagePlanning  Stage = "planning"
	StageDeleting  Stage = "deleting"
	StageCopying   Stage = "copying"
	StageComplete  Stage = "complete"
	StageError     Stage = "error"
)

// Event is a progress event delivered to listeners.
type Event struct {
	Stage     Stage
	Message   string
	Index     int
	Total     int
	Path      string
	Err       error
	Timestamp time.Time
}

// Tracker fans progress events out to registered listeners. The CLI attaches
// a progress-bar renderer, the TUI a message forwarder.
type Tracker struct {
	mu        sync.RWMutex
	stage     Stage
	listeners []func(Event)
}

// NewTracker creates a tracker in the scanning stage.
func NewTracker() *Tracker {
	return &Tracker{stage: StageScanning}
}

// AddListener registers a progress event listener.
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Stage returns the current stage.
func (t *Tracker) Stage() Stage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stage
}

// SetStage moves the tracker to a new stage and notifies listeners.
func (t *Tracker) SetStage(stage Stage, message string) {
	t.mu.Lock()
	t.stage = stage
	t.mu.Unlock()

	t.notify(Event{Stage: stage, Message: message, Timestamp: time.Now()})
}

// File reports a completed per-file operation within a stage.
func (t *Tracker) File(stage Stage, index, total int, path string, err error) {
	t.mu.Lock()
	t.stage = stage
	t.mu.Unlock()

	t.notify(Event{
		Stage:     stage,
		Index:     index,
		Total:     total,
		Path:      path,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// Fail moves the tracker to the error stage.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.mu.Unlock()

	t.notify(Event{Stage: StageError, Message: err.Error(), Err: err, Timestamp: time.Now()})
}

func (t *Tracker) notify(event Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, listener := range t.listeners {
		listener(event)
	}
}
