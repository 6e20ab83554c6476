package pipe

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/chazu/conduit/pkg/mesh"
)

// StandardSizes is the ascending table of standard pipe radii a size index
// selects from.
var StandardSizes = []float64{0.1, 0.12, 0.16, 0.2, 0.25, 0.315, 0.4, 0.56, 0.63, 0.8, 1, 1.3, 1.6, 2}

// Parameter limits. Caller-supplied values outside them are clamped.
const (
	MinDetail     = 4
	MinLength     = 1.0
	MinIterations = 1
	MaxIterations = 12

	DefaultConeFactor  = 1.5
	DefaultElbowFactor = 1.5
)

// Shading selects how quad normals are computed.
type Shading int

const (
	// Smooth gives every corner the radial normal of its ring point.
	Smooth Shading = iota
	// Flat gives all four corners of a quad the quad's face normal.
	Flat
)

func (s Shading) String() string {
	switch s {
	case Smooth:
		return "smooth"
	case Flat:
		return "flat"
	default:
		return fmt.Sprintf("Shading(%d)", int(s))
	}
}

// ParseShading parses "smooth" or "flat".
func ParseShading(s string) (Shading, error) {
	switch s {
	case "", "smooth":
		return Smooth, nil
	case "flat":
		return Flat, nil
	}
	return Smooth, fmt.Errorf("unknown shading %q, expected smooth or flat", s)
}

// Config holds the parameters of one pipe. Values named in the update
// cycle (size index, detail, length, iterations) are only the starting
// values; hosts change them later through the Engine setters.
type Config struct {
	Sizes           []float64 `toml:"sizes" yaml:"sizes" json:"sizes"`
	SizeIndex       int       `toml:"size_index" yaml:"size_index" json:"sizeIndex"`
	Detail          int       `toml:"detail" yaml:"detail" json:"detail"`
	Length          float64   `toml:"length" yaml:"length" json:"length"`
	AngleIterations int       `toml:"angle_iterations" yaml:"angle_iterations" json:"angleIterations"`

	// ConeFactor scales the larger radius into the length of a cone
	// transition so the cone does not fold onto itself.
	ConeFactor float64 `toml:"cone_factor" yaml:"cone_factor" json:"coneFactor"`
	// ElbowFactor scales the pipe radius into the bend radius of a turn.
	ElbowFactor float64 `toml:"elbow_factor" yaml:"elbow_factor" json:"elbowFactor"`

	WeldTolerance float64 `toml:"weld_tolerance" yaml:"weld_tolerance" json:"weldTolerance"`
	Shading       string  `toml:"shading" yaml:"shading" json:"shading"`
	Winding       string  `toml:"winding" yaml:"winding" json:"winding"`
}

// DefaultConfig returns the stock pipe: radius 0.25, 16 sides, runs of
// length 10 and four-step elbows.
func DefaultConfig() Config {
	return Config{
		Sizes:           slices.Clone(StandardSizes),
		SizeIndex:       4,
		Detail:          16,
		Length:          10,
		AngleIterations: 4,
		ConeFactor:      DefaultConeFactor,
		ElbowFactor:     DefaultElbowFactor,
		WeldTolerance:   mesh.DefaultWeldTolerance,
		Shading:         Smooth.String(),
		Winding:         mesh.Clockwise.String(),
	}
}

// Validate reports configuration errors that cannot be fixed by clamping.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sizes) == 0 {
		errs = append(errs, errors.New("size table is empty"))
	}
	for i, s := range c.Sizes {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("size %d is %g, must be positive", i, s))
		}
		if i > 0 && s <= c.Sizes[i-1] {
			errs = append(errs, fmt.Errorf("size table must be ascending at index %d", i))
		}
	}
	if c.ConeFactor <= 0 {
		errs = append(errs, fmt.Errorf("cone factor %g must be positive", c.ConeFactor))
	}
	if c.ElbowFactor <= 0 {
		errs = append(errs, fmt.Errorf("elbow factor %g must be positive", c.ElbowFactor))
	}
	if c.WeldTolerance < 0 {
		errs = append(errs, fmt.Errorf("weld tolerance %g must not be negative", c.WeldTolerance))
	}
	if _, err := ParseShading(c.Shading); err != nil {
		errs = append(errs, err)
	}
	if _, err := mesh.ParseWinding(c.Winding); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("pipe: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ClampSizeIndex clamps i into the size table.
func (c Config) ClampSizeIndex(i int) int {
	return max(0, min(i, len(c.Sizes)-1))
}

// ClampDetail clamps a side count to at least MinDetail.
func ClampDetail(n int) int {
	return max(n, MinDetail)
}

// ClampLength clamps a segment length to at least MinLength. Lengths that
// are not finite become MinLength.
func ClampLength(l float64) float64 {
	if l < MinLength || math.IsNaN(l) || math.IsInf(l, 0) {
		return MinLength
	}
	return l
}

// ClampIterations clamps an elbow step count into [MinIterations, MaxIterations].
func ClampIterations(n int) int {
	return max(MinIterations, min(n, MaxIterations))
}
