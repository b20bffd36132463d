package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/icyseptember2237/nengine/logger"
)

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func spyBridge(options ...BridgeOption) (*Bridge, map[Dialect]*spyEngine) {
	spies := map[Dialect]*spyEngine{}
	factory := func(d Dialect) Engine {
		s := newSpy(d)
		spies[d] = s
		return s
	}
	b := NewBridge(append([]BridgeOption{WithEngineFactory(factory)}, options...)...)
	b.InitGlobals(NewNativeBindingSet())
	return b, spies
}

func TestDialectOf(t *testing.T) {
	tests := []struct {
		path string
		want Dialect
	}{
		{"examples/script/test.lua", DialectLua},
		{"a.lua", DialectLua},
		{"main.js", DialectJs},
		{"script.LUA", DialectJs},
		{"noext", DialectJs},
		{"archive.lua.bak", DialectJs},
		{"lua", DialectJs},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DialectOf(tt.path); got != tt.want {
				t.Errorf("DialectOf(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRegisterRoutesByExtension(t *testing.T) {
	dir := t.TempDir()
	luaPath := filepath.Join(dir, "a.lua")
	jsPath := filepath.Join(dir, "b.js")
	txtPath := filepath.Join(dir, "c.txt")
	for _, p := range []string{luaPath, jsPath, txtPath} {
		writeScript(t, p, "x = 1")
	}

	b, spies := spyBridge()
	b.Register(luaPath)
	b.Register(jsPath)
	b.Register(txtPath)
	if err := b.ReloadAll(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := spies[DialectLua].names; len(got) != 1 || got[0] != luaPath {
		t.Errorf("lua engine received %v, want only %s", got, luaPath)
	}
	if got := spies[DialectJs].names; len(got) != 2 || got[0] != jsPath || got[1] != txtPath {
		t.Errorf("js engine received %v, want [%s %s]", got, jsPath, txtPath)
	}
}

func TestReloadSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.lua")
	writeScript(t, path, "a = 1\n")

	b, spies := spyBridge()
	b.Register(path)
	for i := 0; i < 3; i++ {
		if err := b.ReloadAll(); err != nil {
			t.Fatalf("reload %d: %v", i, err)
		}
	}
	if n := len(spies[DialectLua].chunks); n != 1 {
		t.Fatalf("executed %d times, want 1", n)
	}

	writeScript(t, path, "  a = 1 \n\n\t")
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	if n := len(spies[DialectLua].chunks); n != 1 {
		t.Fatalf("whitespace-only change executed the script again (%d runs)", n)
	}

	writeScript(t, path, "a = 2")
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	if n := len(spies[DialectLua].chunks); n != 2 {
		t.Fatalf("changed content ran %d times in total, want 2", n)
	}
	snap, ok := b.Runtime(DialectLua).Files()[0].Snapshot()
	if !ok || snap != "a = 2" {
		t.Errorf("snapshot = %q (%v), want %q", snap, ok, "a = 2")
	}
}

func TestReloadRetriesFailedScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.js")
	writeScript(t, path, "broken()")

	b, spies := spyBridge()
	spies[DialectJs].failWith = "broken"
	b.Register(path)

	for i := 0; i < 3; i++ {
		if err := b.ReloadAll(); err != nil {
			t.Fatalf("execution errors must not be fatal: %v", err)
		}
	}
	if n := len(spies[DialectJs].chunks); n != 3 {
		t.Errorf("failed script ran %d times, want 3", n)
	}
	if _, ok := b.Runtime(DialectJs).Files()[0].Snapshot(); ok {
		t.Error("failed execution must not record a snapshot")
	}
}

func TestEveryDistinctScriptFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.lua")
	b := filepath.Join(dir, "b.lua")
	writeScript(t, a, `error("first")`)
	writeScript(t, b, `error("second")`)

	obs, logs := observer.New(zapcore.DebugLevel)
	br := NewBridge(WithLogger(zap.New(logger.NewDedupeCore(obs))))
	defer br.Close()
	br.InitGlobals(NewNativeBindingSet())
	br.Register(a)
	br.Register(b)

	failures := func() []observer.LoggedEntry {
		return logs.FilterMessage("failed to execute script").All()
	}
	for i := 0; i < 3; i++ {
		if err := br.ReloadAll(); err != nil {
			t.Fatal(err)
		}
	}
	if got := failures(); len(got) != 2 {
		t.Fatalf("logged %d failures, want one per file: %v", len(got), got)
	}

	writeScript(t, a, `error("third")`)
	if err := br.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	got := failures()
	if len(got) != 3 {
		t.Fatalf("logged %d failures, want 3", len(got))
	}
	last := got[2].ContextMap()
	msg, _ := last["error"].(string)
	if last["path"] != a || !strings.Contains(msg, "third") {
		t.Errorf("last failure fields %v", last)
	}
}

func TestReloadWithoutRetryWaitsForChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.js")
	writeScript(t, path, "broken()")

	b, spies := spyBridge(WithRetryFailed(false))
	spies[DialectJs].failWith = "broken"
	b.Register(path)

	for i := 0; i < 3; i++ {
		if err := b.ReloadAll(); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(spies[DialectJs].chunks); n != 1 {
		t.Fatalf("failed script ran %d times, want 1", n)
	}

	writeScript(t, path, "fixed()")
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	if n := len(spies[DialectJs].chunks); n != 2 {
		t.Errorf("fixed script ran %d times in total, want 2", n)
	}
}

func TestReloadMissingFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.lua")
	writeScript(t, path, "x = 1")

	b, _ := spyBridge()
	b.Register(path)
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	err := b.ReloadAll()
	var readErr *ScriptReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ScriptReadError, got %v", err)
	}
	if readErr.Path != path || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}
	if !strings.Contains(err.Error(), "gone.lua") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestReloadBeforeInitGlobals(t *testing.T) {
	b := NewBridge(WithEngineFactory(func(d Dialect) Engine { return newSpy(d) }))
	if err := b.ReloadAll(); !errors.Is(err, ErrGlobalsNotInstalled) {
		t.Fatalf("expected ErrGlobalsNotInstalled, got %v", err)
	}
}

func TestRegisterMidRun(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.lua")
	second := filepath.Join(dir, "second.lua")
	writeScript(t, first, "a = 1")
	writeScript(t, second, "b = 1")

	b, spies := spyBridge()
	b.Register(first)
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	b.Register(second)
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	got := spies[DialectLua].names
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("execution order %v", got)
	}
}

func TestInitGlobalsInstallsSameBindings(t *testing.T) {
	host := &spyHost{}
	set := DefaultBindings(host, &syncBuffer{}, NewScheduler(nil))

	spies := map[Dialect]*spyEngine{}
	b := NewBridge(WithEngineFactory(func(d Dialect) Engine {
		s := newSpy(d)
		spies[d] = s
		return s
	}))
	b.InitGlobals(set)

	for _, d := range Dialects {
		s := spies[d]
		if !s.ready {
			t.Errorf("%s engine not ready after InitGlobals", d)
		}
		for _, name := range set.Names() {
			if _, ok := s.funcs[name]; !ok {
				t.Errorf("%s engine is missing %s", d, name)
			}
			if _, ok := s.modules[ModuleName][name]; !ok {
				t.Errorf("%s engine module is missing %s", d, name)
			}
		}
		if len(s.funcs) != len(set.Names()) {
			t.Errorf("%s engine has %d globals, want %d", d, len(s.funcs), len(set.Names()))
		}
	}
}

func TestClearWindowColorEndToEnd(t *testing.T) {
	tests := []struct {
		file   string
		source string
	}{
		{"test.lua", "clear_window_color(0, 1, 0.3, 1)"},
		{"test.js", "clear_window_color(0, 1, 0.3, 1);"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeScript(t, path, tt.source)

			host := &spyHost{}
			set := DefaultBindings(host, &syncBuffer{}, NewScheduler(nil))
			b := NewBridge()
			defer b.Close()
			b.InitGlobals(set)
			b.Register(path)

			if err := b.ReloadAll(); err != nil {
				t.Fatal(err)
			}
			if err := b.ReloadAll(); err != nil {
				t.Fatal(err)
			}
			if len(host.colors) != 1 {
				t.Fatalf("clear_window_color called %d times, want 1", len(host.colors))
			}
			want := [4]float32{0, 1, 0.3, 1}
			if host.colors[0] != want {
				t.Errorf("got %v, want %v", host.colors[0], want)
			}
		})
	}
}

func TestUpdateHookReceivesDelta(t *testing.T) {
	dir := t.TempDir()
	luaPath := filepath.Join(dir, "hook.lua")
	jsPath := filepath.Join(dir, "hook.js")
	writeScript(t, luaPath, "function on_update(dt) log('lua', dt) end")
	writeScript(t, jsPath, "function on_update(dt) { log('js', dt); }")

	out := &syncBuffer{}
	set := DefaultBindings(&spyHost{}, out, NewScheduler(nil))
	b := NewBridge()
	defer b.Close()
	b.InitGlobals(set)
	b.Register(luaPath)
	b.Register(jsPath)
	if err := b.ReloadAll(); err != nil {
		t.Fatal(err)
	}
	b.Update(0.5)

	if got, want := out.String(), "lua 0.5\njs 0.5\n"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestPropertyUnchangedContentIsNotReExecuted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	dir := t.TempDir()

	properties.Property("whitespace padding never triggers a reload", prop.ForAll(
		func(content, lead, trail string) bool {
			path := filepath.Join(dir, "p.lua")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return false
			}
			b, spies := spyBridge()
			b.Register(path)
			if err := b.ReloadAll(); err != nil {
				return false
			}
			if err := os.WriteFile(path, []byte(lead+content+trail), 0o644); err != nil {
				return false
			}
			if err := b.ReloadAll(); err != nil {
				return false
			}
			return len(spies[DialectLua].chunks) == 1
		},
		gen.AlphaString(),
		gen.OneConstOf("", " ", "\n", "\t \n"),
		gen.OneConstOf("", " ", "\n\n", " \t"),
	))

	properties.Property("a changed trimmed content runs exactly once", prop.ForAll(
		func(before, after string) bool {
			if before == after {
				return true
			}
			path := filepath.Join(dir, "q.js")
			if err := os.WriteFile(path, []byte(before), 0o644); err != nil {
				return false
			}
			b, spies := spyBridge()
			b.Register(path)
			if err := b.ReloadAll(); err != nil {
				return false
			}
			if err := os.WriteFile(path, []byte(after+"\n"), 0o644); err != nil {
				return false
			}
			for i := 0; i < 2; i++ {
				if err := b.ReloadAll(); err != nil {
					return false
				}
			}
			snap, ok := b.Runtime(DialectJs).Files()[0].Snapshot()
			return len(spies[DialectJs].chunks) == 2 && ok && snap == after
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
