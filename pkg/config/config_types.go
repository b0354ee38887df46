package config

import (
	"time"

	"github.com/dd0wney/discograph-layout/pkg/prune"
)

// Config is the complete layout configuration. Every section defaults to
// the tuned discograph values.
type Config struct {
	Viewport   ViewportConfig   `yaml:"viewport"`
	Simulation SimulationConfig `yaml:"simulation"`
	Forces     ForcesConfig     `yaml:"forces"`
	Links      LinksConfig      `yaml:"links"`
	Collide    CollideConfig    `yaml:"collide"`
	Gravity    GravityConfig    `yaml:"gravity"`
	BBox       BBoxConfig       `yaml:"bbox"`
	Prune      PruneConfig      `yaml:"prune"`
	Placement  PlacementConfig  `yaml:"placement"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ViewportConfig is the size of the drawing surface in pixels
type ViewportConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// SimulationConfig holds the integrator parameters
type SimulationConfig struct {
	Alpha         float64       `yaml:"alpha" validate:"gt=0,lte=1"`
	AlphaMin      float64       `yaml:"alpha_min" validate:"gt=0,lt=1"`
	AlphaDecay    float64       `yaml:"alpha_decay" validate:"gt=0,lt=1"`
	AlphaTarget   float64       `yaml:"alpha_target" validate:"gte=0,lt=1"`
	VelocityDecay float64       `yaml:"velocity_decay" validate:"gte=0,lte=1"`
	Seed          int64         `yaml:"seed"`
	TickInterval  time.Duration `yaml:"tick_interval" validate:"gt=0"`
}

// ForcesConfig tunes charge, waypoint and centering forces
type ForcesConfig struct {
	ChargeStrength   float64 `yaml:"charge_strength" validate:"lte=0"`
	ChargeHops       float64 `yaml:"charge_hops" validate:"gt=0"`
	Theta            float64 `yaml:"theta" validate:"gt=0"`
	DistanceMin      float64 `yaml:"distance_min" validate:"gt=0"`
	DistanceMax      float64 `yaml:"distance_max" validate:"gtfield=DistanceMin"`
	WaypointBoost    float64 `yaml:"waypoint_boost" validate:"gte=0"`
	WaypointRadius   float64 `yaml:"waypoint_radius" validate:"gte=0"`
	WaypointFalloff  float64 `yaml:"waypoint_falloff" validate:"gte=0"`
	MidpointStrength float64 `yaml:"midpoint_strength" validate:"gte=0,lte=1"`
	Centering        bool    `yaml:"centering"`
}

// LinksConfig holds spring rest lengths by relation role
type LinksConfig struct {
	Alias      float64 `yaml:"alias" validate:"gt=0"`
	ReleasedOn float64 `yaml:"released_on" validate:"gt=0"`
	Default    float64 `yaml:"default" validate:"gt=0"`
	Iterations int     `yaml:"iterations" validate:"min=1"`
}

// CollideConfig tunes collision resolution
type CollideConfig struct {
	Buffer     float64 `yaml:"buffer" validate:"gte=0"`
	Strength   float64 `yaml:"strength" validate:"gt=0,lte=1"`
	Iterations int     `yaml:"iterations" validate:"min=1"`
}

// GravityConfig bounds the page sizes that get positional gravity
type GravityConfig struct {
	MinNodes int     `yaml:"min_nodes" validate:"min=0"`
	MaxNodes int     `yaml:"max_nodes" validate:"gtfield=MinNodes"`
	Hops     float64 `yaml:"hops" validate:"gt=0"`
	Divisor  float64 `yaml:"divisor" validate:"gt=0"`
}

// BBoxConfig holds the viewport margins bodies are clamped inside
type BBoxConfig struct {
	Left   float64 `yaml:"left" validate:"gte=0"`
	Right  float64 `yaml:"right" validate:"gte=0"`
	Top    float64 `yaml:"top" validate:"gte=0"`
	Bottom float64 `yaml:"bottom" validate:"gte=0"`
}

// PruneConfig holds the pruning ceilings and escalation schedule
type PruneConfig struct {
	MaxNodes int               `yaml:"max_nodes" validate:"min=1"`
	MaxLinks int               `yaml:"max_links" validate:"min=1"`
	Schedule []prune.Threshold `yaml:"schedule" validate:"required,min=1,dive"`
}

// PlacementConfig controls where new nodes first appear
type PlacementConfig struct {
	Spread float64 `yaml:"spread" validate:"gte=0"`
	Seed   int64   `yaml:"seed"`
}

// BroadcastConfig enables the position frame publisher
type BroadcastConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address" validate:"required_if=Enabled true"`
	Compress bool   `yaml:"compress"`
	// Every publishes one frame per this many ticks
	Every int `yaml:"every" validate:"min=1"`
}

// MetricsConfig enables the Prometheus endpoint of the headless runner
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address" validate:"required_if=Enabled true"`
}

// LoggingConfig selects the log level, globally and per component
// (graph, prune, session, broadcast, simulation)
type LoggingConfig struct {
	Level      string            `yaml:"level" validate:"loglevel"`
	Components map[string]string `yaml:"components" validate:"dive,keys,required,endkeys,loglevel"`
}
