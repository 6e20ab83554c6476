package engine

import (
	"testing"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/route"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(extrude :up)`,
			expect: `(extrude "__kw_up")`,
		},
		{
			name:   "multiple keywords",
			input:  `(extrude :left :length 4)`,
			expect: `(extrude "__kw_left" "__kw_length" 4)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw` :up",
			expect: "`raw :kw` \"__kw_up\"",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(defn zig-zag [] (up))`,
			expect: `(defn zig_zag [] (up))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(size -1)`,
			expect: `(size -1)`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(up)",
			expect: "// comment with :keyword\n(up)",
		},
		{
			name:   "single semicolon comment at end",
			input:  `(up) ; go up`,
			expect: `(up) // go up`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:angle-steps`,
			expect: `"__kw_angle-steps"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Argument parsing tests
// ---------------------------------------------------------------------------

func kw(name string) zygo.Sexp { return &zygo.SexpStr{S: kwPrefix + name} }

func TestParseArgs(t *testing.T) {
	pa := parseArgs([]zygo.Sexp{kw("up"), kw("length"), &zygo.SexpInt{Val: 4}, &zygo.SexpStr{S: "x"}})
	if v, ok := pa.kw["up"]; !ok || v != zygo.SexpNull {
		t.Errorf("expected :up as flag, got %v", pa.kw)
	}
	if n, err := toFloat64(pa.kw["length"]); err != nil || n != 4 {
		t.Errorf("expected :length 4, got %v (%v)", pa.kw["length"], err)
	}
	if len(pa.positional) != 1 {
		t.Errorf("expected 1 positional arg, got %d", len(pa.positional))
	}
	if flags := pa.flags(); len(flags) != 1 || flags[0] != "up" {
		t.Errorf("flags() = %v, want [up]", flags)
	}
}

func TestToInt(t *testing.T) {
	if n, err := toInt(&zygo.SexpFloat{Val: 3}); err != nil || n != 3 {
		t.Errorf("toInt(3.0) = %d, %v", n, err)
	}
	if _, err := toInt(&zygo.SexpFloat{Val: 2.5}); err == nil {
		t.Error("toInt(2.5) should fail")
	}
	if _, err := toInt(&zygo.SexpStr{S: "4"}); err == nil {
		t.Error("toInt(string) should fail")
	}
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func evalRoute(t *testing.T, source string) *route.Route {
	t.Helper()
	eng := NewEngine(pipe.DefaultConfig())
	r, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if r == nil {
		t.Fatal("expected non-nil route")
	}
	return r
}

func TestShorthandDirections(t *testing.T) {
	r := evalRoute(t, `(up) (right) (forward) (down) (left) (back)`)
	want := []geom.Vec3{geom.Up, geom.Right, geom.Forward, geom.Down, geom.Left, geom.Back}
	if r.Len() != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), r.Len())
	}
	for i, d := range r.Directions() {
		if !d.Equal(want[i]) {
			t.Errorf("step %d: direction %v, want %v", i+1, d, want[i])
		}
	}
	s := r.Steps[0]
	if s.SizeIndex != 4 || s.Detail != 16 || s.Length != 10 || s.Iterations != 4 {
		t.Errorf("first step should carry the default parameters, got %+v", s)
	}
	if s.Source != "(up)" {
		t.Errorf("Source = %q, want (up)", s.Source)
	}
}

func TestShorthandLength(t *testing.T) {
	r := evalRoute(t, `(up 3.5) (up)`)
	if r.Steps[0].Length != 3.5 {
		t.Errorf("expected length 3.5, got %g", r.Steps[0].Length)
	}
	if r.Steps[1].Length != 10 {
		t.Errorf("a length override must not stick, got %g", r.Steps[1].Length)
	}
}

func TestExtrude(t *testing.T) {
	r := evalRoute(t, `
(extrude :up)
(extrude "left" :length 4)
(extrude :length 2 :forward)
`)
	if r.Len() != 3 {
		t.Fatalf("expected 3 steps, got %d", r.Len())
	}
	if !r.Steps[0].Direction.Equal(geom.Up) {
		t.Errorf("step 1 direction %v, want up", r.Steps[0].Direction)
	}
	if !r.Steps[1].Direction.Equal(geom.Left) || r.Steps[1].Length != 4 {
		t.Errorf("step 2 = %+v, want left length 4", r.Steps[1])
	}
	if !r.Steps[2].Direction.Equal(geom.Forward) || r.Steps[2].Length != 2 {
		t.Errorf("step 3 = %+v, want forward length 2", r.Steps[2])
	}
}

func TestParameterBuiltins(t *testing.T) {
	r := evalRoute(t, `
(size 6)
(detail 24)
(length 3)
(iterations 8)
(up)
(size 40)
(right)
`)
	s := r.Steps[0]
	if s.SizeIndex != 6 || s.Detail != 24 || s.Length != 3 || s.Iterations != 8 {
		t.Errorf("step 1 parameters = %+v", s)
	}
	// Out-of-range values are recorded as written and clamped on replay.
	if r.Steps[1].SizeIndex != 40 {
		t.Errorf("step 2 size index = %d, want 40", r.Steps[1].SizeIndex)
	}
}

func TestVariableReference(t *testing.T) {
	r := evalRoute(t, `
(def stretch 7)
(length stretch)
(up)
(size (+ (size) 1))
(left)
`)
	if r.Steps[0].Length != 7 {
		t.Errorf("expected length 7 (from variable), got %g", r.Steps[0].Length)
	}
	if r.Steps[1].SizeIndex != 5 {
		t.Errorf("expected size index 5, got %d", r.Steps[1].SizeIndex)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown direction", `(extrude :sideways)`},
		{"two directions", `(extrude :up :left)`},
		{"no direction", `(extrude)`},
		{"string length", `(up "far")`},
		{"negative length", `(up -2)`},
		{"negative extrude length", `(extrude :up :length -3)`},
		{"zero extrude length", `(extrude :left :length 0)`},
		{"fractional size", `(size 2.5)`},
		{"too many args", `(detail 4 5)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(pipe.DefaultConfig())
			r, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if r != nil {
				t.Error("expected nil route on error")
			}
			if len(evalErrs) == 0 {
				t.Error("expected an eval error")
			}
		})
	}
}

func TestScriptStartsFromConfig(t *testing.T) {
	cfg := pipe.DefaultConfig()
	cfg.SizeIndex = 2
	cfg.Length = 5
	eng := NewEngine(cfg)
	r, _, err := eng.Evaluate(`(up)`)
	if err != nil {
		t.Fatal(err)
	}
	if r.Steps[0].SizeIndex != 2 || r.Steps[0].Length != 5 {
		t.Errorf("step = %+v, want size index 2 and length 5", r.Steps[0])
	}
}
