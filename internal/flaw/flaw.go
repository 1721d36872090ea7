// Package flaw defines the tagged union of partial-plan defects a refiner
// must repair (§3: "Flaws. Tagged union over four kinds"). A Flaw value is
// immutable and carries just enough information for the refinement
// generators in internal/core to reconstruct the repair without re-walking
// the plan that produced it.
package flaw

import (
	"fmt"

	"github.com/arcflow-labs/pocl/internal/domain"
)

// Kind discriminates the four flaw shapes.
type Kind int

const (
	KindUnsafe Kind = iota
	KindOpenCondition
	KindMutexThreat
	KindUnexpandedStep
)

func (k Kind) String() string {
	switch k {
	case KindUnsafe:
		return "unsafe"
	case KindOpenCondition:
		return "open-condition"
	case KindMutexThreat:
		return "mutex-threat"
	case KindUnexpandedStep:
		return "unexpanded-step"
	default:
		return "unknown-flaw"
	}
}

// Flaw is implemented by Unsafe, OpenCondition, MutexThreat, and
// UnexpandedStep. The unexported marker keeps the union sealed to this
// package, the way internal/domain seals Formula.
type Flaw interface {
	Kind() Kind
	String() string
	flawNode()
}

// Unsafe is a threatened causal link: Link may be falsified by
// ThreateningStep's EffectIndex'th effect occurring at EffectTime.
type Unsafe struct {
	Link            domain.Link
	ThreateningStep int
	EffectIndex     int
	EffectTime      domain.Timing
}

func (Unsafe) Kind() Kind { return KindUnsafe }
func (u Unsafe) String() string {
	return fmt.Sprintf("unsafe(link %d->%d on %s, threat=step %d effect %d)",
		u.Link.From, u.Link.To, u.Link.Condition.String(), u.ThreateningStep, u.EffectIndex)
}
func (Unsafe) flawNode() {}

// OpenConditionShape discriminates the three open-condition sub-shapes §3
// and §4.5.2 describe.
type OpenConditionShape int

const (
	ShapeLiteral OpenConditionShape = iota
	ShapeDisjunction
	ShapeInequality
)

// OpenCondition is a pending precondition scoped to a step and a time.
// Exactly one of Literal, Disjunction, or Inequality is meaningful,
// selected by Shape.
type OpenCondition struct {
	Shape       OpenConditionShape
	Step        int
	Time        domain.Timing
	Literal     domain.Literal
	Disjunction domain.Disjunction
	Inequality  domain.Inequality
}

func (OpenCondition) Kind() Kind { return KindOpenCondition }
func (o OpenCondition) String() string {
	switch o.Shape {
	case ShapeLiteral:
		return fmt.Sprintf("open-condition(step %d@%s: %s)", o.Step, o.Time, o.Literal.String())
	case ShapeDisjunction:
		return fmt.Sprintf("open-condition(step %d@%s: %s)", o.Step, o.Time, domain.FormulaString(o.Disjunction))
	case ShapeInequality:
		return fmt.Sprintf("open-condition(step %d@%s: %s != %s)", o.Step, o.Time, o.Inequality.Term1.String(), o.Inequality.Term2.String())
	default:
		return "open-condition(?)"
	}
}
func (OpenCondition) flawNode() {}

// MutexThreat is two possibly-concurrent (step, effect) pairs that unify on
// the same atom. Step1 == 0 with both effect indices == -1 is the
// recomputation-pass sentinel §4.5.3 describes: "a sentinel mutex threat
// with step_id1 == 0 triggers a recomputation pass."
type MutexThreat struct {
	Step1        int
	EffectIndex1 int
	Step2        int
	EffectIndex2 int
}

func (MutexThreat) Kind() Kind { return KindMutexThreat }

// Sentinel reports whether m is the recomputation-pass marker rather than a
// real pairwise threat.
func (m MutexThreat) Sentinel() bool {
	return m.Step1 == 0 && m.EffectIndex1 == -1 && m.EffectIndex2 == -1
}

func (m MutexThreat) String() string {
	if m.Sentinel() {
		return "mutex-threat(recompute)"
	}
	return fmt.Sprintf("mutex-threat(step %d effect %d <-> step %d effect %d)", m.Step1, m.EffectIndex1, m.Step2, m.EffectIndex2)
}
func (MutexThreat) flawNode() {}

// RecomputeMutexSentinel constructs the sentinel MutexThreat that asks the
// threat detector to rebuild the mutex-threat chain from scratch.
func RecomputeMutexSentinel() MutexThreat {
	return MutexThreat{Step1: 0, EffectIndex1: -1, EffectIndex2: -1}
}

// UnexpandedStep is a step whose action is composite and not yet
// decomposed.
type UnexpandedStep struct {
	Step int
}

func (UnexpandedStep) Kind() Kind       { return KindUnexpandedStep }
func (u UnexpandedStep) String() string { return fmt.Sprintf("unexpanded-step(step %d)", u.Step) }
func (UnexpandedStep) flawNode()        {}
