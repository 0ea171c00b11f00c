// Package input defines the window events delivered to the engine.
package input

// EventType enumerates the events a window can report.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
)

func (t EventType) String() string {
	switch t {
	case EventQuit:
		return "quit"
	case EventWindowResize:
		return "resize"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseMove:
		return "mouse_move"
	default:
		return "none"
	}
}

// Key is a backend-neutral key code. Only keys the engine reacts to are named.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX float64
	MouseY float64
}

// Pressed reports whether the event is a key press of k.
func (e Event) Pressed(k Key) bool {
	return e.Type == EventKeyDown && e.Key == k
}

// Queue collects events between two polls of the window.
type Queue struct {
	events []Event
	quit   bool
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{
		events: make([]Event, 0, 16),
	}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	if e.Type == EventQuit {
		q.quit = true
	}
	q.events = append(q.events, e)
}

// Events returns the events pushed since the last Reset.
func (q *Queue) Events() []Event {
	return q.events
}

// Quit reports whether a quit event was pushed since the last Reset.
func (q *Queue) Quit() bool {
	return q.quit
}

// Reset clears the queue, keeping its capacity.
func (q *Queue) Reset() {
	q.events = q.events[:0]
	q.quit = false
}

// IsKeyPressed checks if a specific key was pressed since the last Reset.
func (q *Queue) IsKeyPressed(k Key) bool {
	for _, e := range q.events {
		if e.Pressed(k) {
			return true
		}
	}
	return false
}
