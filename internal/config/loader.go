package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Loader assembles Parameters from a YAML file, environment variables, and
// flag overrides layered by viper, then validates the result.
type Loader interface {
	Load(path string) (*Parameters, error)
}

type viperLoader struct {
	validator Validator
	flags     *viper.Viper
}

// NewLoader constructs a Loader. flags, if non-nil, is a viper instance
// that already has command-line flags bound (the highest-precedence
// layer); pass nil to load from file/env/defaults only.
func NewLoader(validator Validator, flags *viper.Viper) Loader {
	return &viperLoader{validator: validator, flags: flags}
}

// Load reads path (if non-empty) as a YAML document, applies environment
// variable overrides (prefix POCL_), layers any bound flags on top, fills
// the rest from Defaults, and validates the merged result.
func (l *viperLoader) Load(path string) (*Parameters, error) {
	v := viper.New()
	v.SetEnvPrefix("pocl")
	v.AutomaticEnv()

	def := Defaults()
	v.SetDefault("search_algorithm", def.SearchAlgorithm)
	v.SetDefault("heuristic", def.Heuristic)
	v.SetDefault("weight", def.Weight)
	v.SetDefault("ground_actions", def.GroundActions)
	v.SetDefault("domain_constraints", def.DomainConstraints)
	v.SetDefault("strip_static_preconditions", def.StripStaticPreconditions)
	v.SetDefault("random_open_conditions", def.RandomOpenConditions)
	v.SetDefault("branch_on_inequality", def.BranchOnInequality)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("verbosity", def.Verbosity)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read parameters file: %w", err)
		}
	}

	if l.flags != nil {
		for key, value := range l.flags.AllSettings() {
			v.Set(key, value)
		}
	}

	var p Parameters
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if len(p.Strategies) == 0 {
		p.Strategies = def.Strategies
	}

	if err := l.validator.Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
