// Package config loads layout settings from YAML, overlaying the tuned
// defaults, and converts them into the graph, prune and simulation types.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/logging"
	"github.com/dd0wney/discograph-layout/pkg/prune"
	"github.com/dd0wney/discograph-layout/pkg/simulation"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logging.LookupLevel(fl.Field().String())
		return err == nil
	})
	return v
}

// Default returns the configuration with every tuned constant
func Default() *Config {
	layout := simulation.DefaultLayout(1200, 900)
	sim := simulation.DefaultConfig()

	return &Config{
		Viewport: ViewportConfig{Width: layout.Width, Height: layout.Height},
		Simulation: SimulationConfig{
			Alpha:         sim.Alpha,
			AlphaMin:      sim.AlphaMin,
			AlphaDecay:    sim.AlphaDecay,
			AlphaTarget:   sim.AlphaTarget,
			VelocityDecay: sim.VelocityDecay,
			Seed:          sim.Seed,
			TickInterval:  16 * time.Millisecond,
		},
		Forces: ForcesConfig{
			ChargeStrength:   layout.ChargeStrength,
			ChargeHops:       layout.ChargeHops,
			Theta:            layout.Theta,
			DistanceMin:      layout.DistanceMin,
			DistanceMax:      layout.DistanceMax,
			WaypointBoost:    layout.WaypointBoost,
			WaypointRadius:   layout.WaypointRadius,
			WaypointFalloff:  layout.WaypointFalloff,
			MidpointStrength: layout.MidpointStrength,
			Centering:        layout.Centering,
		},
		Links: LinksConfig{
			Alias:      layout.LinkDistanceAlias,
			ReleasedOn: layout.LinkDistanceRelease,
			Default:    layout.LinkDistance,
			Iterations: layout.LinkIterations,
		},
		Collide: CollideConfig{
			Buffer:     layout.CollideBuffer,
			Strength:   layout.CollideStrength,
			Iterations: layout.CollideIterations,
		},
		Gravity: GravityConfig{
			MinNodes: layout.GravityMinNodes,
			MaxNodes: layout.GravityMaxNodes,
			Hops:     layout.GravityHops,
			Divisor:  layout.GravityDivisor,
		},
		BBox: BBoxConfig{
			Left:   layout.BBoxLeft,
			Right:  layout.BBoxRight,
			Top:    layout.BBoxTop,
			Bottom: layout.BBoxBottom,
		},
		Prune: PruneConfig{
			MaxNodes: prune.DefaultMaxNodes,
			MaxLinks: prune.DefaultMaxLinks,
			Schedule: prune.DefaultSchedule(),
		},
		Placement: PlacementConfig{Spread: graph.DefaultSpread, Seed: graph.DefaultSeed},
		Broadcast: BroadcastConfig{Address: "tcp://127.0.0.1:40899", Compress: true, Every: 1},
		Metrics:   MetricsConfig{Address: ":9090"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Keys absent
// from data keep their default values; a schedule in data replaces the
// default schedule entirely.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section's constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := validationErrs[0]
	var reason string
	switch e.Tag() {
	case "required", "required_if":
		reason = "field is required"
	case "min", "gte":
		reason = fmt.Sprintf("must be at least %s", e.Param())
	case "gt":
		reason = fmt.Sprintf("must be greater than %s", e.Param())
	case "lt", "lte":
		reason = fmt.Sprintf("must be at most %s", e.Param())
	case "gtfield":
		reason = fmt.Sprintf("must be greater than %s", e.Param())
	case "oneof":
		reason = fmt.Sprintf("must be one of [%s]", e.Param())
	case "loglevel":
		reason = "must be one of debug, info, warn, error"
	default:
		reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, e.Namespace(), reason)
}

// Layout returns the force parameters for the configured viewport
func (c *Config) Layout() simulation.Layout {
	return simulation.Layout{
		Width:               c.Viewport.Width,
		Height:              c.Viewport.Height,
		ChargeStrength:      c.Forces.ChargeStrength,
		ChargeHops:          c.Forces.ChargeHops,
		Theta:               c.Forces.Theta,
		DistanceMin:         c.Forces.DistanceMin,
		DistanceMax:         c.Forces.DistanceMax,
		WaypointBoost:       c.Forces.WaypointBoost,
		WaypointRadius:      c.Forces.WaypointRadius,
		WaypointFalloff:     c.Forces.WaypointFalloff,
		MidpointStrength:    c.Forces.MidpointStrength,
		LinkDistanceAlias:   c.Links.Alias,
		LinkDistanceRelease: c.Links.ReleasedOn,
		LinkDistance:        c.Links.Default,
		LinkIterations:      c.Links.Iterations,
		CollideBuffer:       c.Collide.Buffer,
		CollideIterations:   c.Collide.Iterations,
		CollideStrength:     c.Collide.Strength,
		GravityMinNodes:     c.Gravity.MinNodes,
		GravityMaxNodes:     c.Gravity.MaxNodes,
		GravityHops:         c.Gravity.Hops,
		GravityDivisor:      c.Gravity.Divisor,
		Centering:           c.Forces.Centering,
		BBoxLeft:            c.BBox.Left,
		BBoxRight:           c.BBox.Right,
		BBoxTop:             c.BBox.Top,
		BBoxBottom:          c.BBox.Bottom,
	}
}

// SimulationConfig returns the integrator parameters
func (c *Config) SimulationConfig() simulation.Config {
	return simulation.Config{
		Alpha:         c.Simulation.Alpha,
		AlphaMin:      c.Simulation.AlphaMin,
		AlphaDecay:    c.Simulation.AlphaDecay,
		AlphaTarget:   c.Simulation.AlphaTarget,
		VelocityDecay: c.Simulation.VelocityDecay,
		Seed:          c.Simulation.Seed,
	}
}

// PruneEngine returns a pruning engine with the configured ceilings
func (c *Config) PruneEngine(logger logging.Logger) *prune.Engine {
	e := prune.New()
	e.MaxNodes = c.Prune.MaxNodes
	e.MaxLinks = c.Prune.MaxLinks
	e.Schedule = append([]prune.Threshold(nil), c.Prune.Schedule...)
	if logger != nil {
		e.Logger = logger
	}
	return e
}

// ModelOptions returns the placement options for a new graph.Model, with
// new nodes placed around the viewport center
func (c *Config) ModelOptions() []graph.ModelOption {
	return []graph.ModelOption{
		graph.WithSeed(c.Placement.Seed),
		graph.WithSpread(c.Placement.Spread),
		graph.WithAnchor(c.Viewport.Width/2, c.Viewport.Height/2),
	}
}

// LogLevel returns the parsed logging level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// Logger builds the JSON logger the binaries log through, with the
// per-component overrides applied
func (c *Config) Logger(w io.Writer) *logging.JSONLogger {
	l := logging.NewJSONLogger(w, c.LogLevel())
	for name, level := range c.Logging.Components {
		l.SetComponentLevel(name, logging.ParseLevel(level))
	}
	return l
}
