package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcflow-labs/pocl/cmd/pocl/internal"
	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/core"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/observability"
	"github.com/arcflow-labs/pocl/internal/printer"
	"github.com/arcflow-labs/pocl/internal/search"
)

var (
	planParamsFile string
	planVerbosity  int
	planSeed       int64
	planAlgorithm  string
	planHeuristic  string
)

var planCmd = &cobra.Command{
	Use:   "plan <domain.yaml> <problem.yaml>",
	Short: "Search for a plan solving problem.yaml under domain.yaml",
	Long: `Plan loads a domain (action and decomposition schemas) and a problem
(initial state, goal formula) and runs the partial-order causal-link
search driver to find a totally-refined plan, printing it on success.

Exit codes:
  0   plan found
  10  domain/problem/parameters file could not be loaded
  20  search exhausted every strategy with no solution`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

func init() {
	flags := planCmd.Flags()
	flags.StringVar(&planParamsFile, "params", "", "planner parameters YAML file (defaults layered from config.Defaults)")
	flags.IntVarP(&planVerbosity, "verbosity", "v", -1, "override parameters.verbosity")
	flags.Int64Var(&planSeed, "seed", -1, "override parameters.seed")
	flags.StringVar(&planAlgorithm, "algorithm", "", "override parameters.search_algorithm (astar|idastar)")
	flags.StringVar(&planHeuristic, "heuristic", "", "override parameters.heuristic (flaw_count|graph_distance)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	domainPath, problemPath := args[0], args[1]

	flagOverrides := viper.New()
	if planVerbosity >= 0 {
		flagOverrides.Set("verbosity", planVerbosity)
	}
	if planSeed >= 0 {
		flagOverrides.Set("seed", planSeed)
	}
	if planAlgorithm != "" {
		flagOverrides.Set("search_algorithm", planAlgorithm)
	}
	if planHeuristic != "" {
		flagOverrides.Set("heuristic", planHeuristic)
	}

	loader := config.NewLoader(config.NewValidator(), flagOverrides)
	params, err := loader.Load(planParamsFile)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to load planner parameters", err)
	}

	domainFile, err := os.Open(domainPath)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to open domain file: "+domainPath, err)
	}
	defer domainFile.Close()
	dom, err := domain.LoadDomain(domainFile)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to parse domain file: "+domainPath, err)
	}

	problemFile, err := os.Open(problemPath)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to open problem file: "+problemPath, err)
	}
	defer problemFile.Close()
	prob, err := domain.LoadProblem(problemFile, dom)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to parse problem file: "+problemPath, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: verbosityLevel(params.Verbosity)})
	logger := observability.NewTracedLogger(handler, "")
	metrics := observability.NewNoopMetrics()

	ctx := cmd.Context()
	sc, err := core.NewSearchContext(ctx, params, dom, prob, logger, metrics)
	if err != nil {
		return internal.WrapError(internal.ExitError, "failed to build search context", err)
	}
	defer sc.Cleanup()

	initial, ok := core.MakeInitialPlan(sc)
	if !ok {
		return internal.WrapError(internal.ExitNoSolution, "contradictory initial conditions: goal is unreachable from the empty binding set", nil)
	}

	driver := search.NewDriver(sc)
	solution, err := driver.Run(ctx, initial)
	if err != nil {
		return internal.WrapError(internal.ExitNoSolution, "no solution found", err)
	}

	printer.Print(cmd.OutOrStdout(), solution, params.Verbosity)

	if params.Verbosity >= 1 {
		stats := driver.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "Plans generated: %d\n", stats.Reported())
		fmt.Fprintf(cmd.ErrOrStderr(), "Plans visited: %d\n", stats.VisitedPlans)
		fmt.Fprintf(cmd.ErrOrStderr(), "Dead ends encountered: %d\n", stats.DeadEnds)
		fmt.Fprintf(cmd.ErrOrStderr(), "Strategy switches: %d\n", stats.StrategySwitches)
	}

	return nil
}

// verbosityLevel maps the planner's 0-3 verbosity knob onto the slog
// level of the search context's stderr logger.
func verbosityLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
