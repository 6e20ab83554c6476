package main

import (
	"context"
	"log"
	"sync"

	"github.com/chazu/conduit/pkg/engine"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/kernel/sdfx"
	"github.com/chazu/conduit/pkg/mesh"
	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/tessellate"
)

// colorPalette assigns colors to the meshes sent to the frontend. The pipe
// always takes the first entry, the reference solid the second.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Scripts are replayed from scratch on every Evaluate; the steering
// bindings drive a second, live engine one update at a time.
type App struct {
	ctx    context.Context
	cfg    pipe.Config
	script *engine.Engine
	kernel kernel.Kernel

	mu       sync.Mutex
	live     *pipe.Engine
	segments []pipe.Segment // of the last evaluated script
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Stats    mesh.Stats      `json:"stats"`
	Cursor   [3]float64      `json:"cursor"`
}

// SteerResult reports one interactive steering update.
type SteerResult struct {
	Mesh    MeshData     `json:"mesh"`
	Outcome string       `json:"outcome"`
	Error   string       `json:"error,omitempty"`
	Params  ParamsData   `json:"params"`
	Stats   mesh.Stats   `json:"stats"`
	Cursor  [3]float64   `json:"cursor"`
	State   string       `json:"state"`
	Segment []SegmentRow `json:"segments"`
}

// SegmentRow is one line of the segment log shown in the frontend.
type SegmentRow struct {
	Update int     `json:"update"`
	Kind   string  `json:"kind"`
	Length float64 `json:"length"`
	Radius float64 `json:"radius"`
}

// ParamsData mirrors the live engine's current parameters.
type ParamsData struct {
	SizeIndex  int     `json:"sizeIndex"`
	Radius     float64 `json:"radius"`
	Detail     int     `json:"detail"`
	Length     float64 `json:"length"`
	Iterations int     `json:"iterations"`
}

// NewApp creates an App with the stock pipe parameters. Triangles wind
// counter-clockwise, which is what the WebGL renderer treats as front.
func NewApp() *App {
	cfg := pipe.DefaultConfig()
	cfg.Winding = mesh.CounterClockwise.String()
	app, err := NewAppWithConfig(cfg)
	if err != nil {
		// The defaults always validate.
		panic(err)
	}
	return app
}

// NewAppWithConfig creates an App whose engines start from cfg.
func NewAppWithConfig(cfg pipe.Config) (*App, error) {
	live, err := pipe.New(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:    cfg,
		script: engine.NewEngine(cfg),
		kernel: sdfx.New(),
		live:   live,
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes a steering script and returns the pipe mesh, errors and
// warnings. This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a route.
	r, evalErrs, err := a.script.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Replay the route into a fresh mesh buffer.
	res, err := tessellate.Tessellate(r, a.cfg)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Message: w.Message,
		})
	}

	a.mu.Lock()
	a.segments = res.Segments
	a.mu.Unlock()

	result.Stats = res.Stats
	result.Cursor = [3]float64{res.Cursor.X, res.Cursor.Y, res.Cursor.Z}
	if res.Mesh.VertexCount() > 0 {
		result.Meshes = append(result.Meshes, toMeshData(res.Mesh, "pipe", colorPalette[0]))
	}
	return result
}

// Reference meshes the smooth solid the last evaluated pipe approximates,
// so the frontend can overlay it. cells is the marching-cubes resolution.
func (a *App) Reference(cells int) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	a.mu.Lock()
	segments := a.segments
	a.mu.Unlock()
	if len(segments) == 0 {
		return result
	}

	m, err := tessellate.ReferenceMesh(a.kernel, segments, max(cells, 10))
	if err != nil {
		log.Printf("Reference error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Meshes = append(result.Meshes, MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		UVs:      m.UVs,
		Indices:  m.Indices,
		PartName: "reference",
		Color:    colorPalette[1],
	})
	return result
}

// Steer feeds one named direction ("up", "left", ...) to the live engine.
func (a *App) Steer(name string) SteerResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out, err := a.live.SteerName(name)
	if err != nil {
		res := a.liveResult()
		res.Error = err.Error()
		return res
	}
	res := a.liveResult()
	switch {
	case out.Dropped != pipe.NotDropped:
		res.Outcome = out.Dropped.String()
	case out.Turned && out.Coned:
		res.Outcome = "turned+coned"
	case out.Turned:
		res.Outcome = "turned"
	case out.Coned:
		res.Outcome = "coned"
	default:
		res.Outcome = "extruded"
	}
	return res
}

// SetSize selects the live pipe radius from the size table.
func (a *App) SetSize(index int) ParamsData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live.SetSizeIndex(index)
	return a.params()
}

// SetDetail sets the live ring side count.
func (a *App) SetDetail(n int) ParamsData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live.SetDetail(n)
	return a.params()
}

// SetLength sets the live straight run length.
func (a *App) SetLength(l float64) ParamsData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live.SetLength(l)
	return a.params()
}

// SetIterations sets the live elbow step count.
func (a *App) SetIterations(n int) ParamsData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live.SetIterations(n)
	return a.params()
}

// Reset discards the live pipe and starts over at the origin.
func (a *App) Reset() SteerResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	live, err := pipe.New(a.cfg)
	if err != nil {
		// cfg validated when the App was built.
		log.Printf("Reset error: %v", err)
		return a.liveResult()
	}
	a.live = live
	return a.liveResult()
}

// liveResult describes the live engine. Callers hold a.mu.
func (a *App) liveResult() SteerResult {
	c := a.live.Cursor()
	res := SteerResult{
		Mesh:    toMeshData(a.live.Snapshot(), "pipe", colorPalette[0]),
		Params:  a.params(),
		Stats:   a.live.Stats(),
		Cursor:  [3]float64{c.X, c.Y, c.Z},
		State:   a.live.State().String(),
		Segment: []SegmentRow{},
	}
	for _, s := range a.live.Segments() {
		res.Segment = append(res.Segment, SegmentRow{
			Update: s.Update,
			Kind:   s.Kind.String(),
			Length: s.Length,
			Radius: s.EndRadius,
		})
	}
	return res
}

// params reads the live engine's parameters. Callers hold a.mu.
func (a *App) params() ParamsData {
	return ParamsData{
		SizeIndex:  a.live.SizeIndex(),
		Radius:     a.live.Radius(),
		Detail:     a.live.Detail(),
		Length:     a.live.Length(),
		Iterations: a.live.Iterations(),
	}
}

func toMeshData(s mesh.Snapshot, name, color string) MeshData {
	m := s.Flatten(name)
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		UVs:      m.UVs,
		Indices:  m.Indices,
		PartName: m.PartName,
		Color:    color,
	}
}
