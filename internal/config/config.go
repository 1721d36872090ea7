// Package config defines the planner's runtime parameters and the
// viper/validator pipeline that assembles and checks them, mirroring the
// teacher's internal/config config.go/loader.go/validator.go split.
package config

// SearchAlgorithm selects the search driver's outer loop (§6: "A*, IDA*,
// ...").
type SearchAlgorithm string

const (
	SearchAStar SearchAlgorithm = "astar"
	SearchIDAStar SearchAlgorithm = "idastar"
)

// Heuristic selects the C8 rank function.
type Heuristic string

const (
	HeuristicFlawCount     Heuristic = "flaw_count"
	HeuristicGraphDistance Heuristic = "graph_distance"
)

// FlawSelectionStrategy names one of the round-robin flaw-selection
// policies the search driver cycles between (§4.7).
type FlawSelectionStrategy string

const (
	// StrategyLIFO picks the most recently added flaw of the
	// highest-priority non-empty kind.
	StrategyLIFO FlawSelectionStrategy = "lifo"
	// StrategyFIFO picks the least recently added flaw of the
	// highest-priority non-empty kind.
	StrategyFIFO FlawSelectionStrategy = "fifo"
	// StrategyLeastCost picks the flaw with the fewest refinement options,
	// the classic "most constrained first" ordering.
	StrategyLeastCost FlawSelectionStrategy = "least_cost"
)

// StrategyLimit is one entry of the ordered flaw-selection strategy list,
// pairing a strategy with its per-strategy search limit (§6: "ordered list
// of flaw-selection strategies with per-strategy search limits").
type StrategyLimit struct {
	Strategy FlawSelectionStrategy `mapstructure:"strategy" yaml:"strategy" validate:"required,oneof=lifo fifo least_cost"`
	Limit    int                   `mapstructure:"limit" yaml:"limit" validate:"min=0"`
}

// Parameters is the root configuration for one planning invocation.
type Parameters struct {
	SearchAlgorithm SearchAlgorithm `mapstructure:"search_algorithm" yaml:"search_algorithm" validate:"required,oneof=astar idastar"`
	Strategies      []StrategyLimit `mapstructure:"strategies" yaml:"strategies" validate:"required,min=1,dive"`
	Heuristic       Heuristic       `mapstructure:"heuristic" yaml:"heuristic" validate:"required,oneof=flaw_count graph_distance"`
	Weight          float64         `mapstructure:"weight" yaml:"weight" validate:"min=0"`

	GroundActions            bool `mapstructure:"ground_actions" yaml:"ground_actions"`
	DomainConstraints        bool `mapstructure:"domain_constraints" yaml:"domain_constraints"`
	StripStaticPreconditions bool `mapstructure:"strip_static_preconditions" yaml:"strip_static_preconditions"`
	RandomOpenConditions     bool `mapstructure:"random_open_conditions" yaml:"random_open_conditions"`
	BranchOnInequality       bool `mapstructure:"branch_on_inequality" yaml:"branch_on_inequality"`

	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Verbosity sets the stderr log level, enables the stderr solver
	// summary (>=1), and selects the verbosity>=2 plan-printer form (§6).
	// No progress markers or per-plan diagnostic dumps are emitted.
	Verbosity int `mapstructure:"verbosity" yaml:"verbosity" validate:"min=0,max=3"`
}
