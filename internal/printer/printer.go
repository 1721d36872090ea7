// Package printer renders a completed (or partial, for diagnostics)
// plan to a writer, in the two forms §6's external interfaces section
// describes: a terse per-step schedule at verbosity < 2, and a full
// framed dump — steps, inbound links, unresolved open conditions, unsafe
// links, mutex threats, unexpanded steps, bindings, makespan — at
// verbosity >= 2. The ordering constraints themselves are not listed.
package printer

import (
	"fmt"
	"io"
	"sort"

	"github.com/arcflow-labs/pocl/internal/core"
	"github.com/arcflow-labs/pocl/internal/domain"
)

// Print writes plan to w in the form verbosity selects.
func Print(w io.Writer, plan *core.Plan, verbosity int) {
	if verbosity >= 2 {
		printVerbose(w, plan)
		return
	}
	printTerse(w, plan)
}

func printTerse(w io.Writer, plan *core.Plan) {
	makespan, ok := plan.Orderings().Schedule()
	if !ok {
		makespan = 0
	}
	fmt.Fprintf(w, "Makespan: %g\n", makespan)

	for _, s := range orderedSteps(plan) {
		if s.Action.IsDummy() {
			continue
		}
		t, ok := stepTime(plan, s)
		durSuffix := ""
		if s.Action.Durative {
			durSuffix = fmt.Sprintf("[%g]", s.Action.Duration)
		}
		if ok {
			fmt.Fprintf(w, "%g:%s%s\n", t, actionString(plan, s), durSuffix)
		} else {
			fmt.Fprintf(w, "?:%s%s\n", actionString(plan, s), durSuffix)
		}
	}
}

func printVerbose(w io.Writer, plan *core.Plan) {
	fmt.Fprintln(w, "=== Plan ===")
	for _, s := range orderedSteps(plan) {
		fmt.Fprintf(w, "step %d: %s", s.ID, actionString(plan, s))
		if s.ID == domain.InitialStepID {
			fmt.Fprint(w, " (initial)")
		}
		if s.ID == domain.GoalStepID {
			fmt.Fprint(w, " (goal)")
		}
		fmt.Fprintln(w)
		for _, l := range plan.LinksTo(s.ID) {
			fmt.Fprintf(w, "    <- step %d @%s on %s\n", l.From, l.FromTime, l.Condition.String())
		}
	}

	fmt.Fprintln(w, "--- open conditions ---")
	for c := plan.OpenConds(); c != nil; c = c.Tail {
		fmt.Fprintf(w, "    %s\n", c.Head.String())
	}

	fmt.Fprintln(w, "--- unsafe links ---")
	for c := plan.Unsafes(); c != nil; c = c.Tail {
		fmt.Fprintf(w, "    %s\n", c.Head.String())
	}

	fmt.Fprintln(w, "--- mutex threats ---")
	for c := plan.MutexThreats(); c != nil; c = c.Tail {
		fmt.Fprintf(w, "    %s\n", c.Head.String())
	}

	fmt.Fprintln(w, "--- unexpanded steps ---")
	for c := plan.UnexpandedSteps(); c != nil; c = c.Tail {
		fmt.Fprintf(w, "    %s\n", c.Head.String())
	}

	fmt.Fprintln(w, "--- bindings ---")
	for _, c := range plan.Bindings().Constraints() {
		op := "="
		if c.Negated {
			op = "!="
		}
		fmt.Fprintf(w, "    %s %s %s\n", c.Term1.String(), op, c.Term2.String())
	}

	makespan, _ := plan.Orderings().Schedule()
	fmt.Fprintf(w, "Makespan: %g\n", makespan)
}

// orderedSteps returns plan's steps sorted by id for deterministic
// display.
func orderedSteps(plan *core.Plan) []domain.Step {
	var out []domain.Step
	for c := plan.Steps(); c != nil; c = c.Tail {
		out = append(out, c.Head)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// stepTime returns s's critical-path-scheduled start time. Both ordering
// variants track per-step durations and schedule them identically.
func stepTime(plan *core.Plan, s domain.Step) (float64, bool) {
	return plan.Orderings().StartTime(s.ID)
}

// actionString renders a step's action and its (bindings-resolved)
// argument list as "name(arg1 arg2)".
func actionString(plan *core.Plan, s domain.Step) string {
	args := make([]string, len(s.Action.Parameters))
	for i, p := range s.Action.Parameters {
		if v, ok := plan.Bindings().Value(p); ok {
			args[i] = v.Name
		} else {
			args[i] = p.Name
		}
	}
	out := s.Action.Name
	for _, a := range args {
		out += " " + a
	}
	return out
}
