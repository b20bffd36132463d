package gfx_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/icyseptember2237/nengine/gfx"
	"github.com/icyseptember2237/nengine/gfx/gfxtest"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		code gfx.Enum
		want string
	}{
		{gfx.NoError, "no error"},
		{gfx.InvalidEnum, "invalid enum"},
		{gfx.InvalidOperation, "invalid operation"},
		{gfx.OutOfMemory, "out of memory"},
		{gfx.InvalidFramebufferOperation, "invalid framebuffer operation"},
		{0x1234, "unknown error code 0x1234"},
	}
	for _, tt := range tests {
		if got := gfx.ErrorString(tt.code); !strings.HasPrefix(got, tt.want) {
			t.Errorf("ErrorString(0x%X) = %q, want prefix %q", tt.code, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	ctx := gfxtest.New()
	if err := gfx.Check(ctx, "noop"); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	ctx.Errors = []gfx.Enum{gfx.InvalidValue}
	err := gfx.Check(ctx, "upload")
	var glErr *gfx.Error
	if !errors.As(err, &glErr) || glErr.Code != gfx.InvalidValue || glErr.Op != "upload" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "numeric argument is out of range") {
		t.Errorf("error %q is not decoded", err)
	}
}
