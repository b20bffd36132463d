package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Options struct {
	Title  string
	Width  int
	Height int
	// Fullscreen opens on the primary monitor at its current video mode.
	Fullscreen bool
}

type GLFWWindow struct {
	window *glfw.Window
	queue  Queue
}

// NewGLFWWindow creates a window with a current OpenGL 4.1 core context.
// The calling goroutine is locked to its OS thread, which must then run the
// frame loop.
func NewGLFWWindow(opt Options) (*GLFWWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	width, height := opt.Width, opt.Height
	var monitor *glfw.Monitor
	if opt.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			mode := monitor.GetVideoMode()
			width, height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(width, height, opt.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.MakeContextCurrent()

	w := &GLFWWindow{window: win}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.queue.Push(Event{Kind: EventKey, Key: Key(key), Action: convertAction(action)})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		w.queue.Push(Event{Kind: EventMouseButton, Button: MouseButton(button), Action: convertAction(action), X: x, Y: y})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.queue.Push(Event{Kind: EventCursor, X: x, Y: y})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.queue.Push(Event{Kind: EventFramebufferSize, Width: width, Height: height})
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		w.queue.Push(Event{Kind: EventClose})
	})

	return w, nil
}

func convertAction(a glfw.Action) Action {
	switch a {
	case glfw.Press:
		return Press
	case glfw.Repeat:
		return Repeat
	}
	return Release
}

func (w *GLFWWindow) PollEvents() []Event {
	glfw.PollEvents()
	return w.queue.Drain()
}

func (w *GLFWWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *GLFWWindow) SetShouldClose(v bool) {
	w.window.SetShouldClose(v)
}

func (w *GLFWWindow) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *GLFWWindow) SwapBuffers() {
	w.window.SwapBuffers()
}

// Time is the GLFW timer in seconds.
func (w *GLFWWindow) Time() float64 {
	return glfw.GetTime()
}

func (w *GLFWWindow) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}

var _ Window = (*GLFWWindow)(nil)
