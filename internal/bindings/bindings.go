// Package bindings implements the binding-constraint engine: the set of
// equality and inequality constraints between plan terms that §3 calls the
// "Binding constraint set". A Bindings value is immutable; Add and Unify
// return a new value sharing the old constraint list as its prefix, so
// that many plans can hold references to bindings that differ only in
// their most recent refinement.
package bindings

import (
	"sort"

	"github.com/arcflow-labs/pocl/internal/domain"
)

// Constraint is a single equality (Negated=false) or inequality
// (Negated=true) constraint between two terms.
type Constraint struct {
	Term1, Term2 domain.Term
	Negated      bool
}

// Equal and NotEqual are convenience constructors.
func Equal(t1, t2 domain.Term) Constraint    { return Constraint{Term1: t1, Term2: t2} }
func NotEqual(t1, t2 domain.Term) Constraint { return Constraint{Term1: t1, Term2: t2, Negated: true} }

// Bindings is an immutable, append-only list of constraints. The zero
// value (via Empty) has no constraints: every term is its own, unbound
// representative.
type Bindings struct {
	constraints []Constraint
}

// Empty returns the binding constraint set with no constraints.
func Empty() *Bindings {
	return &Bindings{}
}

// Unify attempts to add the equality t1 = t2, returning the new Bindings
// and true on success, or nil and false if doing so would contradict an
// existing inequality or equate two distinct objects.
func (b *Bindings) Unify(t1, t2 domain.Term) (*Bindings, bool) {
	return b.Add([]Constraint{Equal(t1, t2)})
}

// Add folds every constraint in cs into b in order, returning the final
// Bindings and true, or nil and false the moment any constraint is
// inconsistent with what came before it (including earlier elements of
// cs itself).
func (b *Bindings) Add(cs []Constraint) (*Bindings, bool) {
	cur := b
	for _, c := range cs {
		var ok bool
		if c.Negated {
			cur, ok = cur.addInequality(c.Term1, c.Term2)
		} else {
			cur, ok = cur.addEquality(c.Term1, c.Term2)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (b *Bindings) addEquality(t1, t2 domain.Term) (*Bindings, bool) {
	r1, r2 := b.representative(t1), b.representative(t2)
	if r1 == r2 {
		return b, true
	}
	if !r1.Variable && !r2.Variable {
		// Two distinct bound objects can never be equal.
		return nil, false
	}
	if b.hasInequality(r1, r2) {
		return nil, false
	}
	return b.appended(Equal(t1, t2)), true
}

func (b *Bindings) addInequality(t1, t2 domain.Term) (*Bindings, bool) {
	r1, r2 := b.representative(t1), b.representative(t2)
	if r1 == r2 {
		// Already provably equal: the inequality can never hold.
		return nil, false
	}
	return b.appended(NotEqual(t1, t2)), true
}

func (b *Bindings) appended(c Constraint) *Bindings {
	out := make([]Constraint, len(b.constraints)+1)
	copy(out, b.constraints)
	out[len(b.constraints)] = c
	return &Bindings{constraints: out}
}

// representative follows the equality constraints transitively reachable
// from t and returns a canonical member of t's equivalence class: the
// bound object in the class if one exists (classes never legally contain
// two distinct objects once Add has been used to build them), otherwise
// the lexicographically smallest variable name, for determinism.
func (b *Bindings) representative(t domain.Term) domain.Term {
	visited := map[string]domain.Term{t.Name: t}
	queue := []domain.Term{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range b.constraints {
			if c.Negated {
				continue
			}
			var other domain.Term
			switch {
			case c.Term1 == cur:
				other = c.Term2
			case c.Term2 == cur:
				other = c.Term1
			default:
				continue
			}
			if _, seen := visited[other.Name]; !seen {
				visited[other.Name] = other
				queue = append(queue, other)
			}
		}
	}

	// Among the equivalence class, prefer an object representative (there
	// should be at most one if Add has been used consistently); break
	// ties, and fall back among variables, by lexicographically smallest
	// name for determinism.
	var best domain.Term
	haveBest := false
	for _, v := range visited {
		switch {
		case !haveBest:
			best, haveBest = v, true
		case !v.Variable && best.Variable:
			best = v
		case v.Variable == best.Variable && v.Name < best.Name:
			best = v
		}
	}
	return best
}

// hasInequality reports whether an inequality constraint's two
// representatives are exactly {r1, r2} (in either order).
func (b *Bindings) hasInequality(r1, r2 domain.Term) bool {
	for _, c := range b.constraints {
		if !c.Negated {
			continue
		}
		cr1, cr2 := b.representative(c.Term1), b.representative(c.Term2)
		if (cr1 == r1 && cr2 == r2) || (cr1 == r2 && cr2 == r1) {
			return true
		}
	}
	return false
}

// CouldEqual reports whether t1 and t2 are not provably distinct under b
// — i.e. whether a future Unify(t1, t2) could still succeed against a
// bindings set built by adding more constraints to b (it never removes
// constraints, so a true result here remains sound for any descendant of
// b that hasn't yet added a contradicting inequality).
func (b *Bindings) CouldEqual(t1, t2 domain.Term) bool {
	r1, r2 := b.representative(t1), b.representative(t2)
	if r1 == r2 {
		return true
	}
	if !r1.Variable && !r2.Variable {
		return false
	}
	return !b.hasInequality(r1, r2)
}

// ProvablyEqual reports whether t1 and t2 already resolve to the same
// representative.
func (b *Bindings) ProvablyEqual(t1, t2 domain.Term) bool {
	return b.representative(t1) == b.representative(t2)
}

// Value returns the bound object t resolves to, or the zero Term and
// false if t is not (yet) bound to an object.
func (b *Bindings) Value(t domain.Term) (domain.Term, bool) {
	r := b.representative(t)
	return r, !r.Variable
}

// Unifier computes the list of equality constraints needed to unify two
// atoms of the same predicate/arity under b, skipping any argument pair
// already provably equal. Returns false if any argument pair is provably
// distinct, meaning the atoms can never unify.
func (b *Bindings) Unifier(a1, a2 domain.Atom) ([]Constraint, bool) {
	if a1.Predicate != a2.Predicate || len(a1.Args) != len(a2.Args) {
		return nil, false
	}
	var cs []Constraint
	for i := range a1.Args {
		t1, t2 := a1.Args[i], a2.Args[i]
		if !b.CouldEqual(t1, t2) {
			return nil, false
		}
		if !b.ProvablyEqual(t1, t2) {
			cs = append(cs, Equal(t1, t2))
		}
	}
	return cs, true
}

// Affects implements the threat test of §4.4: effect threatens a causal
// link whose condition is link if their atoms are the same predicate,
// could still unify under b, and the two literals have opposite polarity
// (the effect would falsify what the link's condition asserts).
func (b *Bindings) Affects(effect, link domain.Literal) bool {
	if effect.Negated == link.Negated {
		return false
	}
	_, ok := b.Unifier(effect.Atom, link.Atom)
	return ok
}

// Domain filters candidates down to those not provably distinct from v
// under b; if v is already bound to an object, the result is that single
// object (if it appears in candidates) or empty.
func (b *Bindings) Domain(v domain.Term, candidates []domain.Term) []domain.Term {
	if bound, ok := b.Value(v); ok {
		for _, c := range candidates {
			if c.Name == bound.Name {
				return []domain.Term{c}
			}
		}
		return nil
	}
	out := make([]domain.Term, 0, len(candidates))
	for _, c := range candidates {
		if b.CouldEqual(v, c) {
			out = append(out, c)
		}
	}
	return out
}

// Constraints returns a defensive copy of b's constraint list, sorted for
// deterministic display (used by the diagnostic plan printer).
func (b *Bindings) Constraints() []Constraint {
	out := make([]Constraint, len(b.constraints))
	copy(out, b.constraints)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Term1.Name != out[j].Term1.Name {
			return out[i].Term1.Name < out[j].Term1.Name
		}
		return out[i].Term2.Name < out[j].Term2.Name
	})
	return out
}
