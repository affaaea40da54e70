package engine

// EventKind identifies what changed in the engine.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventCursorMoved
	EventPlaybackStarted
	EventPlaybackStopped
	EventPlaybackFinished
	EventMarksChanged
	EventExported
)

var eventNames = map[EventKind]string{
	EventLoaded:           "loaded",
	EventCursorMoved:      "cursor_moved",
	EventPlaybackStarted:  "playback_started",
	EventPlaybackStopped:  "playback_stopped",
	EventPlaybackFinished: "playback_finished",
	EventMarksChanged:     "marks_changed",
	EventExported:         "exported",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a plain notification. How it is shown is up to the subscriber.
type Event struct {
	Kind EventKind

	// Index is the cursor at the time of the event.
	Index int

	// Rows and Path are set for EventLoaded and EventExported.
	Rows int
	Path string

	Message string
}

// Subscribe registers fn to receive every event. Events are delivered
// synchronously on the caller's goroutine.
func (e *Engine) Subscribe(fn func(Event)) {
	if fn != nil {
		e.subscribers = append(e.subscribers, fn)
	}
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.subscribers {
		fn(ev)
	}
}
