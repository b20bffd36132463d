package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrGlobalsNotInstalled is returned by a reload on an engine whose
// bindings were never installed.
var ErrGlobalsNotInstalled = errors.New("script globals not installed")

// ScriptReadError reports a registered script that could not be read. It
// is fatal to the frame loop.
type ScriptReadError struct {
	Path string
	Err  error
}

func (e *ScriptReadError) Error() string {
	return fmt.Sprintf("failed to read script %q: %v", e.Path, e.Err)
}

func (e *ScriptReadError) Unwrap() error {
	return e.Err
}

// ScriptFile is a registered path and the trimmed content last executed
// successfully from it.
type ScriptFile struct {
	Path string

	snapshot string
	loaded   bool
	failed   string
	rejected bool
}

// Snapshot returns the last successfully executed trimmed content.
func (f *ScriptFile) Snapshot() (string, bool) {
	return f.snapshot, f.loaded
}

// Runtime is one engine together with the files routed to it.
type Runtime struct {
	engine      Engine
	files       []*ScriptFile
	retryFailed bool
	logger      *zap.Logger
}

func newRuntime(e Engine, retryFailed bool, logger *zap.Logger) *Runtime {
	return &Runtime{engine: e, retryFailed: retryFailed, logger: logger}
}

func (r *Runtime) Engine() Engine {
	return r.engine
}

func (r *Runtime) Files() []*ScriptFile {
	return r.files
}

func (r *Runtime) Add(path string) {
	r.files = append(r.files, &ScriptFile{Path: path})
}

// InitGlobals installs the binding set and marks the engine ready.
func (r *Runtime) InitGlobals(set *NativeBindingSet) {
	set.Install(r.engine)
	r.engine.SetReady()
}

// Load executes every file whose trimmed content differs from its snapshot.
// An unreadable file aborts with a *ScriptReadError. Execution errors are
// logged and leave the snapshot untouched.
func (r *Runtime) Load() error {
	if !r.engine.IsReady() {
		return fmt.Errorf("%s engine: %w", r.engine.Dialect(), ErrGlobalsNotInstalled)
	}
	for _, file := range r.files {
		raw, err := os.ReadFile(file.Path)
		if err != nil {
			return &ScriptReadError{Path: file.Path, Err: err}
		}
		content := string(raw)
		trimmed := strings.TrimSpace(content)

		if file.loaded && file.snapshot == trimmed {
			continue
		}
		if !r.retryFailed && file.rejected && file.failed == trimmed {
			continue
		}

		if err := r.engine.ParseChunk(file.Path, content); err != nil {
			r.logger.Error("failed to execute script",
				zap.String("path", file.Path),
				zap.Stringer("dialect", r.engine.Dialect()),
				zap.Error(err))
			file.failed = trimmed
			file.rejected = true
			continue
		}

		file.snapshot = trimmed
		file.loaded = true
		file.rejected = false
		r.logger.Debug("script loaded", zap.String("path", file.Path))
	}
	return nil
}

// Update calls the script's on_update hook, if it defines one.
func (r *Runtime) Update(deltaSeconds float64) {
	if !r.engine.IsFunction(UpdateHook) {
		return
	}
	if _, err := r.engine.Call(UpdateHook, 0, deltaSeconds); err != nil {
		r.logger.Error("update hook failed",
			zap.Stringer("dialect", r.engine.Dialect()),
			zap.Error(err))
	}
}

// UpdateHook is the optional per-frame script function.
const UpdateHook = "on_update"

type BridgeOption func(*Bridge)

// WithEngineFactory replaces how the bridge builds its engines.
func WithEngineFactory(factory func(Dialect) Engine) BridgeOption {
	return func(b *Bridge) {
		b.factory = factory
	}
}

// WithRetryFailed controls whether content that failed to execute is run
// again on every reload until it changes. It defaults to true.
func WithRetryFailed(retry bool) BridgeOption {
	return func(b *Bridge) {
		b.retryFailed = retry
	}
}

func WithLogger(logger *zap.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Bridge owns one runtime per dialect and routes registered scripts to them
// by file extension.
type Bridge struct {
	runtimes    map[Dialect]*Runtime
	factory     func(Dialect) Engine
	retryFailed bool
	logger      *zap.Logger
}

func NewBridge(options ...BridgeOption) *Bridge {
	b := &Bridge{
		runtimes:    make(map[Dialect]*Runtime, len(Dialects)),
		factory:     NewEngine,
		retryFailed: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(b)
	}
	for _, d := range Dialects {
		b.runtimes[d] = newRuntime(b.factory(d), b.retryFailed, b.logger.With(zap.Stringer("dialect", d)))
	}
	return b
}

func (b *Bridge) Runtime(d Dialect) *Runtime {
	return b.runtimes[d]
}

// Register routes path to the runtime chosen by DialectOf. Paths added
// while running are picked up by the next reload.
func (b *Bridge) Register(path string) Dialect {
	d := DialectOf(path)
	b.runtimes[d].Add(path)
	return d
}

func (b *Bridge) InitGlobals(set *NativeBindingSet) {
	for _, d := range Dialects {
		b.runtimes[d].InitGlobals(set)
	}
}

// ReloadAll reloads every runtime in Dialects order and stops at the first
// fatal error.
func (b *Bridge) ReloadAll() error {
	for _, d := range Dialects {
		if err := b.runtimes[d].Load(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bridge) Update(deltaSeconds float64) {
	for _, d := range Dialects {
		b.runtimes[d].Update(deltaSeconds)
	}
}

func (b *Bridge) Close() {
	for _, d := range Dialects {
		b.runtimes[d].engine.Close()
	}
}
