package core

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/observability"
	"github.com/arcflow-labs/pocl/internal/ordering"
	"github.com/stretchr/testify/require"
)

// unorderedOrderings returns a fresh binary Orderings with no constraints,
// for tests that build a Plan's fields directly rather than going through
// a refinement generator.
func unorderedOrderings() *ordering.Orderings {
	return ordering.NewBinary()
}

// newTestContext builds a SearchContext over dom/prob with default
// parameters, discarding all log output.
func newTestContext(t *testing.T, dom *domain.Def, prob *domain.Problem) *SearchContext {
	t.Helper()
	dom.RecomputeStaticPredicates()
	logger := observability.NewTracedLogger(slog.NewTextHandler(io.Discard, nil), "test")
	sc, err := NewSearchContext(context.Background(), config.Defaults(), dom, prob, logger, observability.NewNoopMetrics())
	require.NoError(t, err)
	return sc
}

// action is a small builder for a ground/schema action in test fixtures.
func action(name string, precond domain.Formula, effects ...domain.Literal) *domain.Action {
	a := &domain.Action{Name: name, Precondition: precond}
	for _, l := range effects {
		a.Effects = append(a.Effects, domain.NewEffect(l))
	}
	return a
}

func atom(pred string, args ...string) domain.Literal {
	a := domain.Atom{Predicate: pred}
	for _, arg := range args {
		a.Args = append(a.Args, domain.ParseTerm(arg))
	}
	return domain.Literal{Atom: a}
}
