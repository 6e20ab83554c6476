package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/conduit/pkg/config"
	"github.com/chazu/conduit/pkg/engine"
	"github.com/chazu/conduit/pkg/kernel/sdfx"
	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/tessellate"
	"github.com/spf13/cobra"
)

// errInvalid is returned when a script evaluates but its route has
// validation errors, after they have been printed.
var errInvalid = errors.New("route is invalid")

func newRunCmd(configPath *string) *cobra.Command {
	var (
		deviation bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Build the pipe mesh for a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), args[0], cfg, deviation, asJSON)
		},
	}
	cmd.Flags().BoolVarP(&deviation, "deviation", "d", false, "measure the mesh against the smooth reference solid")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the full result as JSON")
	return cmd
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script>",
		Short: "Check a script without building geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return validate(cmd.OutOrStdout(), args[0], cfg)
		},
	}
}

func newConfigCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective pipe parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), cfg, config.Format(format))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(config.TOML), "output format: toml or yaml")
	return cmd
}

// evaluate reads and runs the script at path.
func evaluate(path string, cfg pipe.Config) (*route.Route, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, evalErrs, err := engine.NewEngine(cfg).Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	return r, nil
}

func run(w io.Writer, path string, cfg pipe.Config, deviation, asJSON bool) error {
	r, err := evaluate(path, cfg)
	if err != nil {
		return err
	}
	res, err := tessellate.Tessellate(r, cfg)
	if err != nil {
		return err
	}

	var dev float64
	if deviation && len(res.Segments) > 0 {
		k := sdfx.New()
		solid, err := tessellate.Reference(k, res.Segments)
		if err != nil {
			return err
		}
		dev = tessellate.Deviation(k, solid, res.Mesh.Positions)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*tessellate.Result
			Deviation *float64 `json:"deviation,omitempty"`
		}{res, optional(deviation, dev)})
	}

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintf(w, "%d steps, %d segments\n", r.Len(), len(res.Segments))
	fmt.Fprintf(w, "%d vertices, %d triangles, %d quads (%d of %d corners welded)\n",
		res.Stats.Vertices, res.Stats.Triangles, res.Stats.Quads, res.Stats.Welds, res.Stats.Submissions)
	fmt.Fprintf(w, "cursor %v\n", res.Cursor)
	if deviation {
		fmt.Fprintf(w, "max deviation %.6g\n", dev)
	}
	return nil
}

func validate(w io.Writer, path string, cfg pipe.Config) error {
	r, err := evaluate(path, cfg)
	if err != nil {
		return err
	}
	check := route.ValidateAll(r, cfg)
	for _, e := range check.Errors {
		fmt.Fprintln(w, e.Error())
	}
	for _, warn := range check.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if !check.OK() {
		return errInvalid
	}
	fmt.Fprintf(w, "%s: %d steps ok\n", path, r.Len())
	return nil
}

func optional(ok bool, v float64) *float64 {
	if !ok {
		return nil
	}
	return &v
}
