package config

// Defaults returns the Parameters set used when no flags/env/file override
// a field.
func Defaults() *Parameters {
	return &Parameters{
		SearchAlgorithm: SearchAStar,
		Strategies: []StrategyLimit{
			{Strategy: StrategyLeastCost, Limit: 0},
			{Strategy: StrategyLIFO, Limit: 0},
		},
		Heuristic:                HeuristicGraphDistance,
		Weight:                   1.0,
		GroundActions:            true,
		DomainConstraints:        false,
		StripStaticPreconditions: false,
		RandomOpenConditions:     false,
		BranchOnInequality:       false,
		Seed:                     1,
		Verbosity:                1,
	}
}
