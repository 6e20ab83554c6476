package route

import (
	"strings"
	"testing"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/pipe"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// step returns a step with the default pipe parameters.
func step(dir geom.Vec3) Step {
	cfg := pipe.DefaultConfig()
	return Step{
		Direction:  dir,
		SizeIndex:  cfg.SizeIndex,
		Detail:     cfg.Detail,
		Length:     cfg.Length,
		Iterations: cfg.AngleIterations,
	}
}

func buildRoute(dirs ...geom.Vec3) *Route {
	r := New()
	for i, d := range dirs {
		s := step(d)
		s.Line = i + 1
		r.Add(s)
	}
	return r
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if result.Warnings contains at least one entry
// whose Message contains substr.
func hasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Route
// ---------------------------------------------------------------------------

func TestRouteBasics(t *testing.T) {
	r := buildRoute(geom.Up, geom.Right, geom.V(1, 1, 0))
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	dirs := r.Directions()
	if !dirs[1].Equal(geom.Right) {
		t.Errorf("Directions()[1] = %v, want right", dirs[1])
	}
	if got, want := r.String(), "up right (1,1,0)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Step validation
// ---------------------------------------------------------------------------

func TestValidate_CleanRoute(t *testing.T) {
	r := buildRoute(geom.Up, geom.Right, geom.Forward, geom.Down)
	if errs := Validate(r, pipe.DefaultConfig()); len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
}

func TestValidate_NonAxisDirection(t *testing.T) {
	r := buildRoute(geom.Up, geom.V(0, 2, 0), geom.Vec3{})
	errs := Validate(r, pipe.DefaultConfig())
	if !hasError(errs, "not one of the six axes") {
		t.Fatalf("expected non-axis error, got %v", errs)
	}
	count := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 errors, got %d", count)
	}
}

func TestValidate_Reversal(t *testing.T) {
	r := buildRoute(geom.Up, geom.Down, geom.Left, geom.Right)
	result := ValidateAll(r, pipe.DefaultConfig())
	if !result.OK() {
		t.Fatalf("reversals must not be errors: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 reversal warnings, got %v", result.Warnings)
	}
	if result.Warnings[0].Step != 2 || result.Warnings[0].Line != 2 {
		t.Errorf("first warning at step %d line %d, want step 2 line 2",
			result.Warnings[0].Step, result.Warnings[0].Line)
	}
	if !hasWarning(result, "down reverses up") {
		t.Errorf("expected warning naming both directions, got %v", result.Warnings)
	}
}

func TestValidate_DroppedStepKeepsLastDirection(t *testing.T) {
	// After the dropped reversal the pipe still travels up, so a second
	// down is a reversal as well.
	r := buildRoute(geom.Up, geom.Down, geom.Down)
	result := ValidateAll(r, pipe.DefaultConfig())
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
}

func TestValidate_ClampedParameters(t *testing.T) {
	r := New()
	s := step(geom.Up)
	s.SizeIndex = 40
	s.Detail = 3
	s.Length = 0.25
	s.Iterations = 20
	r.Add(s)

	result := ValidateAll(r, pipe.DefaultConfig())
	if !result.OK() {
		t.Fatalf("clamping must not be an error: %v", result.Errors)
	}
	for _, substr := range []string{"size index 40", "detail 3", "length 0.25", "iterations 20"} {
		if !hasWarning(result, substr) {
			t.Errorf("missing warning %q in %v", substr, result.Warnings)
		}
	}
}

func TestValidate_EmptyRoute(t *testing.T) {
	result := ValidateAll(New(), pipe.DefaultConfig())
	if !hasWarning(result, "no steps") {
		t.Errorf("expected empty route warning, got %v", result.Warnings)
	}
}

func TestValidationErrorFormatting(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Message: "m", Severity: SeverityWarning}, "[warning] m"},
		{ValidationError{Step: 3, Message: "m"}, "[error] step 3: m"},
		{ValidationError{Step: 3, Line: 7, Message: "m"}, "[error] step 3 (line 7): m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	w := ValidationWarning{Step: 2, Message: "x"}
	if got := w.String(); got != "[warning] step 2: x" {
		t.Errorf("String() = %q", got)
	}
}
