package route

import (
	"fmt"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/pipe"
)

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Step     int                // 1-based step number, 0 for route-level findings
	Line     int                // source line of the step, 0 if unknown
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.Step == 0:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("[%s] step %d (line %d): %s", e.Severity, e.Step, e.Line, e.Message)
	default:
		return fmt.Sprintf("[%s] step %d: %s", e.Severity, e.Step, e.Message)
	}
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Step    int
	Line    int
	Message string
}

func (w ValidationWarning) String() string {
	return ValidationError{Step: w.Step, Line: w.Line, Message: w.Message, Severity: SeverityWarning}.Error()
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result holds no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the step checks against the pipe configuration and returns
// every finding, errors and warnings alike. It never mutates the route.
func Validate(r *Route, cfg pipe.Config) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDirections(r)...)
	errs = append(errs, validateParameters(r, cfg)...)
	if r.Len() == 0 {
		errs = append(errs, ValidationError{
			Message:  "route has no steps",
			Severity: SeverityWarning,
		})
	}
	return errs
}

// ValidateAll runs Validate and splits the findings into errors and
// warnings. Clearance is checked separately on built segments, see
// ValidateClearance.
func ValidateAll(r *Route, cfg pipe.Config) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(r, cfg) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Step:    e.Step,
				Line:    e.Line,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDirections rejects non-axis directions and warns about reversals,
// which the engine drops.
func validateDirections(r *Route) []ValidationError {
	var errs []ValidationError
	var last geom.Vec3
	for i, s := range r.Steps {
		if !geom.IsAxis(s.Direction) {
			errs = append(errs, ValidationError{
				Step:     i + 1,
				Line:     s.Line,
				Message:  fmt.Sprintf("direction %v is not one of the six axes", s.Direction),
				Severity: SeverityError,
			})
			continue
		}
		if !last.IsZero() && s.Direction.Equal(last.Neg()) {
			errs = append(errs, ValidationError{
				Step:     i + 1,
				Line:     s.Line,
				Message:  fmt.Sprintf("%s reverses %s and will be dropped", geom.AxisName(s.Direction), geom.AxisName(last)),
				Severity: SeverityWarning,
			})
			continue
		}
		last = s.Direction
	}
	return errs
}

// validateParameters warns about parameters the engine will clamp.
func validateParameters(r *Route, cfg pipe.Config) []ValidationError {
	var errs []ValidationError
	warn := func(i int, s Step, format string, args ...any) {
		errs = append(errs, ValidationError{
			Step:     i + 1,
			Line:     s.Line,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityWarning,
		})
	}
	for i, s := range r.Steps {
		if c := cfg.ClampSizeIndex(s.SizeIndex); c != s.SizeIndex {
			warn(i, s, "size index %d is outside the size table, using %d", s.SizeIndex, c)
		}
		if c := pipe.ClampDetail(s.Detail); c != s.Detail {
			warn(i, s, "detail %d is below %d, using %d", s.Detail, pipe.MinDetail, c)
		}
		if c := pipe.ClampLength(s.Length); c != s.Length {
			warn(i, s, "length %g is below %g, using %g", s.Length, pipe.MinLength, c)
		}
		if c := pipe.ClampIterations(s.Iterations); c != s.Iterations {
			warn(i, s, "iterations %d outside [%d, %d], using %d", s.Iterations, pipe.MinIterations, pipe.MaxIterations, c)
		}
	}
	return errs
}
