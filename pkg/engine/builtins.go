package engine

import (
	"fmt"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/route"
	zygo "github.com/glycerine/zygomys/zygo"
)

// directionNames are the steering shorthands, each registered as a builtin.
var directionNames = []string{"up", "down", "left", "right", "forward", "back"}

// script is the steering state a script mutates while it runs. Parameter
// values are recorded as written; clamping happens when the route is
// replayed, so validation can warn about them.
type script struct {
	route      *route.Route
	sizeIndex  int
	detail     int
	length     float64
	iterations int
}

func newScript(cfg pipe.Config) *script {
	return &script{
		route:      route.New(),
		sizeIndex:  cfg.SizeIndex,
		detail:     cfg.Detail,
		length:     cfg.Length,
		iterations: cfg.AngleIterations,
	}
}

// steer appends one step. A non-positive length means the current one.
func (s *script) steer(dir geom.Vec3, length float64, source string) {
	if length <= 0 {
		length = s.length
	}
	s.route.Add(route.Step{
		Direction:  dir,
		SizeIndex:  s.sizeIndex,
		Detail:     s.detail,
		Length:     length,
		Iterations: s.iterations,
		Source:     source,
	})
}

// registerBuiltins installs the steering builtins into a zygomys
// environment. They append to st.route as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *script) {

	// -----------------------------------------------------------------------
	// (size) (size 6)
	// -----------------------------------------------------------------------
	env.AddFunction("size", intSetter(&st.sizeIndex))

	// -----------------------------------------------------------------------
	// (detail) (detail 24)
	// -----------------------------------------------------------------------
	env.AddFunction("detail", intSetter(&st.detail))

	// -----------------------------------------------------------------------
	// (iterations) (iterations 8)
	// -----------------------------------------------------------------------
	env.AddFunction("iterations", intSetter(&st.iterations))

	// -----------------------------------------------------------------------
	// (length) (length 4.5)
	// -----------------------------------------------------------------------
	env.AddFunction("length", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 0:
		case 1:
			f, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("length: %w", err)
			}
			st.length = f
		default:
			return zygo.SexpNull, fmt.Errorf("length takes at most one argument, got %d", len(args))
		}
		return &zygo.SexpFloat{Val: st.length}, nil
	})

	// -----------------------------------------------------------------------
	// (extrude :up) (extrude "left" :length 3)
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var length float64
		if v, ok := pa.kw["length"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: length: %w", err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("extrude: length %g must be positive", f)
			}
			length = f
			delete(pa.kw, "length")
		}

		var candidates []string
		for _, p := range pa.positional {
			s, err := toKeywordString(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: direction: %w", err)
			}
			candidates = append(candidates, s)
		}
		candidates = append(candidates, pa.flags()...)
		if len(candidates) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires exactly one direction, got %d", len(candidates))
		}

		dir, err := geom.AxisByName(candidates[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		st.steer(dir, length, "(extrude "+geom.AxisName(dir)+")")
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (up) (left 4) ...
	// -----------------------------------------------------------------------
	for _, dirName := range directionNames {
		dir, _ := geom.AxisByName(dirName)
		env.AddFunction(dirName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			var length float64
			switch len(args) {
			case 0:
			case 1:
				f, err := toFloat64(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: length: %w", name, err)
				}
				if f <= 0 {
					return zygo.SexpNull, fmt.Errorf("%s: length %g must be positive", name, f)
				}
				length = f
			default:
				return zygo.SexpNull, fmt.Errorf("%s takes at most one argument, got %d", name, len(args))
			}
			st.steer(dir, length, "("+name+")")
			return zygo.SexpNull, nil
		})
	}
}

// intSetter returns a builtin that reads or sets *target.
func intSetter(target *int) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 0:
		case 1:
			n, err := toInt(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			*target = n
		default:
			return zygo.SexpNull, fmt.Errorf("%s takes at most one argument, got %d", name, len(args))
		}
		return &zygo.SexpInt{Val: int64(*target)}, nil
	}
}
