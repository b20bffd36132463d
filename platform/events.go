package platform

// Key codes follow GLFW, which uses ASCII for printable keys.
type Key int

const (
	KeyUnknown Key = -1
	KeySpace   Key = 32
	KeyA       Key = 65
	KeyD       Key = 68
	KeyS       Key = 83
	KeyW       Key = 87
	KeyEscape  Key = 256
	KeyEnter   Key = 257
	KeyRight   Key = 262
	KeyLeft    Key = 263
	KeyDown    Key = 264
	KeyUp      Key = 265
)

type Action int

const (
	Release Action = iota
	Press
	Repeat
)

type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

type EventKind int

const (
	EventKey EventKind = iota
	EventMouseButton
	EventCursor
	EventFramebufferSize
	EventClose
)

// Event is one queued window event. Only the fields of its Kind are set.
type Event struct {
	Kind   EventKind
	Key    Key
	Action Action
	Button MouseButton
	X, Y   float64
	Width  int
	Height int
}

// IsEscapeRelease is the close gesture of the engine.
func (e Event) IsEscapeRelease() bool {
	return e.Kind == EventKey && e.Key == KeyEscape && e.Action == Release
}

// Window is the platform window the frame driver runs in.
type Window interface {
	// PollEvents processes pending platform events and returns those queued
	// since the previous call.
	PollEvents() []Event
	ShouldClose() bool
	SetShouldClose(bool)
	FramebufferSize() (width, height int)
	SwapBuffers()
	Destroy()
}

// Queue collects events from platform callbacks until they are drained.
type Queue struct {
	events []Event
}

func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

func (q *Queue) Drain() []Event {
	events := q.events
	q.events = nil
	return events
}
