package engine

import (
	"strings"
	"testing"
	"time"
)

func readyEngine(t *testing.T, d Dialect, host Host, out *syncBuffer) Engine {
	t.Helper()
	set := DefaultBindings(host, out, NewScheduler(nil))
	e := set.Pool(d).New()
	t.Cleanup(e.Close)
	return e
}

func TestFormatValues(t *testing.T) {
	tests := []struct {
		name   string
		values []interface{}
		want   string
	}{
		{"empty", nil, ""},
		{"strings", []interface{}{"a", "b"}, "a b"},
		{"integral float", []interface{}{float64(3)}, "3"},
		{"fraction", []interface{}{0.25}, "0.25"},
		{"ints", []interface{}{int64(-2), uint8(7)}, "-2 7"},
		{"nested", []interface{}{[]interface{}{float64(1), []interface{}{"x"}}}, "[1, [x]]"},
		{"map", []interface{}{map[string]interface{}{"B": 2.0, "A": "z"}}, "{A: z, B: 2}"},
		{"nil and bool", []interface{}{nil, true}, "nil true"},
		{"callback", []interface{}{&Callback{}}, "<function>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValues(tt.values...); got != tt.want {
				t.Errorf("FormatValues() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogBindingBothDialects(t *testing.T) {
	tests := []struct {
		dialect Dialect
		source  string
	}{
		{DialectLua, `log("frame", 1, {2, 3, {4}})`},
		{DialectJs, `log("frame", 1, [2, 3, [4]]);`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			out := &syncBuffer{}
			e := readyEngine(t, tt.dialect, &spyHost{}, out)
			if err := e.ParseString(tt.source); err != nil {
				t.Fatal(err)
			}
			if got, want := out.String(), "frame 1 [2, 3, [4]]\n"; got != want {
				t.Errorf("log wrote %q, want %q", got, want)
			}
		})
	}
}

func TestModuleExposesBindings(t *testing.T) {
	tests := []struct {
		dialect Dialect
		source  string
	}{
		{DialectLua, `local ne = require("nengine"); ne.log(ne.name, ne.elapsed_time())`},
		{DialectJs, `nengine.log(nengine.name, nengine.elapsed_time());`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			out := &syncBuffer{}
			e := readyEngine(t, tt.dialect, &spyHost{}, out)
			if err := e.ParseString(tt.source); err != nil {
				t.Fatal(err)
			}
			if got, want := out.String(), "nengine 1.5\n"; got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestRequestCloseBinding(t *testing.T) {
	for _, d := range Dialects {
		t.Run(d.String(), func(t *testing.T) {
			host := &spyHost{}
			e := readyEngine(t, d, host, &syncBuffer{})
			if err := e.ParseString("request_close()"); err != nil {
				t.Fatal(err)
			}
			if host.closes != 1 {
				t.Errorf("RequestClose called %d times", host.closes)
			}
		})
	}
}

func TestBindingNamesAreStable(t *testing.T) {
	set := DefaultBindings(&spyHost{}, &syncBuffer{}, NewScheduler(nil))
	want := []string{BindingClearWindowColor, BindingLog, BindingSetTimeout, BindingRequestClose, BindingElapsedTime}
	got := set.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names %v, want %v", got, want)
	}
	if err := set.Add(BindingLog, func() {}); err == nil {
		t.Error("duplicate binding name accepted")
	}
	if err := set.Add("not_a_func", 3); err == nil {
		t.Error("non-function binding accepted")
	}
}

func TestSetTimeoutRunsInFreshContext(t *testing.T) {
	tests := []struct {
		dialect Dialect
		source  string
	}{
		{DialectLua, `counter = 5; set_timeout(function() log("seen", counter) end, 1)`},
		{DialectJs, `var counter = 5; set_timeout(function() { log("seen", typeof counter); }, 1);`},
	}
	wants := map[Dialect]string{
		DialectLua: "seen nil\n",
		DialectJs:  "seen undefined\n",
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			out := &syncBuffer{}
			set := DefaultBindings(&spyHost{}, out, NewScheduler(nil))
			pool := set.Pool(tt.dialect)
			e := pool.New()
			defer e.Close()

			if err := e.ParseString(tt.source); err != nil {
				t.Fatal(err)
			}
			waitFor(t, func() bool { return out.String() != "" })
			if got := out.String(); got != wants[tt.dialect] {
				t.Errorf("callback wrote %q, want %q", got, wants[tt.dialect])
			}
			if pool.Count() != 2 {
				t.Errorf("pool built %d engines, want 2", pool.Count())
			}
		})
	}
}

func TestSetTimeoutRejectsNonFunction(t *testing.T) {
	sources := map[Dialect]string{
		DialectLua: "set_timeout(nil, 10)",
		DialectJs:  "set_timeout(null, 10);",
	}
	for d, src := range sources {
		t.Run(d.String(), func(t *testing.T) {
			e := readyEngine(t, d, &spyHost{}, &syncBuffer{})
			err := e.ParseString(src)
			if err == nil || !strings.Contains(err.Error(), errNoCallback.Error()) {
				t.Errorf("expected %q, got %v", errNoCallback, err)
			}
		})
	}
}

func TestSchedulerRecoversFromFailingCallback(t *testing.T) {
	out := &syncBuffer{}
	set := DefaultBindings(&spyHost{}, out, NewScheduler(nil))
	e := set.Pool(DialectJs).New()
	defer e.Close()

	src := `set_timeout(function() { throw new Error("bad"); }, 0);
set_timeout(function() { log("after"); }, 20);`
	if err := e.ParseString(src); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return out.String() == "after\n" })
}

func TestSchedulerSleepsForDelay(t *testing.T) {
	var slept time.Duration
	done := make(chan struct{})
	s := NewScheduler(nil)
	s.sleep = func(d time.Duration) { slept = d }

	set := NewNativeBindingSet()
	if err := set.Add("mark", func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	cb := &Callback{dialect: DialectJs, source: "function() { mark(); }"}
	s.Schedule(cb, 250*time.Millisecond, set.Pool(DialectJs))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback never ran")
	}
	if slept != 250*time.Millisecond {
		t.Errorf("slept %v, want 250ms", slept)
	}
}

func TestSetTimeoutCopiesLuaUpvalues(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"scalars and local function", `local n = 7; local name = "x"
local function twice(v) return v * 2 end
set_timeout(function() log("n", n, twice(n), name) end, 1)`, "n 7 14 x\n"},
		{"value at schedule time", `local n = 1
set_timeout(function() log(n) end, 20)
n = 2`, "1\n"},
		{"recursive local function", `local function count(i) if i == 0 then return 0 end return 1 + count(i - 1) end
set_timeout(function() log(count(3)) end, 1)`, "3\n"},
		{"aliased binding", `local say = log
set_timeout(function() say("aliased") end, 1)`, "aliased\n"},
		{"module binding", `local ne = require("nengine"); local say = ne.log
set_timeout(function() say("from module") end, 1)`, "from module\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			e := readyEngine(t, DialectLua, &spyHost{}, out)
			if err := e.ParseString(tt.source); err != nil {
				t.Fatal(err)
			}
			waitFor(t, func() bool { return out.String() != "" })
			if got := out.String(); got != tt.want {
				t.Errorf("callback wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetTimeoutSchedulesBindingDirectly(t *testing.T) {
	host := &spyHost{}
	e := readyEngine(t, DialectLua, host, &syncBuffer{})
	if err := e.ParseString("set_timeout(request_close, 1)"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return host.closeCount() == 1 })
}

func TestSetTimeoutRejectsUncopyableLuaCallbacks(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"table upvalue", `local t = {1}; set_timeout(function() log(t) end, 1)`, `captures "t"`},
		{"unbound native", `set_timeout(print, 1)`, errNativeNotBound.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			e := readyEngine(t, DialectLua, &spyHost{}, out)
			err := e.ParseString(tt.source)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected an error containing %q, got %v", tt.want, err)
			}
			time.Sleep(20 * time.Millisecond)
			if out.String() != "" {
				t.Errorf("rejected callback ran and wrote %q", out.String())
			}
		})
	}
}
