// Package engine provides the steering-script evaluator for Conduit.
// It wraps zygomys in a sandboxed environment and produces a route.Route
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/route"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'engine'
func tracer() tracing.Trace {
	return tracing.Select("engine")
}

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	cfg        pipe.Config
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine whose scripts start from the parameters in cfg.
func NewEngine(cfg pipe.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate runs a steering script and returns the route it produced.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns route + nil errors + nil error
//   - On parse/eval failure: returns nil route + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*route.Route, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		r, evalErrs, err := e.evaluate(source)
		ch <- evalResult{route: r, errors: evalErrs, err: err}
	}()

	r, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation)
	if r != nil {
		r.Version = gen
	}
	return r, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*route.Route, []EvalError, error) {
	st := newScript(e.cfg)

	// Empty source is a valid program that steers nowhere.
	if strings.TrimSpace(source) == "" {
		return st.route, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		tracer().Infof("script does not parse: %v", err)
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		tracer().Infof("script failed: %v", err)
		return nil, parseZygomysError(err), nil
	}

	tracer().Debugf("script produced %d steps: %s", st.route.Len(), st.route)
	return st.route, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
