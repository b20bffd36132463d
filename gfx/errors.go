package gfx

import "fmt"

// ErrorString decodes a GetError code.
func ErrorString(code Enum) string {
	switch code {
	case NoError:
		return "no error"
	case InvalidEnum:
		return "invalid enum: an unacceptable value is specified for an enumerated argument"
	case InvalidValue:
		return "invalid value: a numeric argument is out of range"
	case InvalidOperation:
		return "invalid operation: the specified operation is not allowed in the current state"
	case StackOverflow:
		return "stack overflow: this command would cause a stack overflow"
	case StackUnderflow:
		return "stack underflow: this command would cause a stack underflow"
	case OutOfMemory:
		return "out of memory: there is not enough memory left to execute the command"
	case InvalidFramebufferOperation:
		return "invalid framebuffer operation: the framebuffer object is not complete"
	}
	return fmt.Sprintf("unknown error code 0x%04X", code)
}

// Error is a GetError code that is not NoError.
type Error struct {
	Op   string
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("gl error during %s: %s", e.Op, ErrorString(e.Code))
}

// Check returns an *Error if the context has a pending error code.
func Check(ctx Context, op string) error {
	if code := ctx.GetError(); code != NoError {
		return &Error{Op: op, Code: code}
	}
	return nil
}
