package version

import (
	"fmt"
	"strings"
)

// Op is a requirement operator.
type Op string

// Supported requirement operators.
const (
	OpEqual          Op = "="
	OpNotEqual       Op = "!="
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
	OpPessimistic    Op = "~>"
)

// ops is ordered so that two-character operators are matched first.
var ops = []Op{OpPessimistic, OpGreaterOrEqual, OpLessOrEqual, OpNotEqual, OpGreater, OpLess, OpEqual}

// Constraint is a single operator/version pair such as "~> 1.2".
type Constraint struct {
	Op      Op
	Version Version
}

// Requirement is a conjunction of constraints. The zero value accepts any
// release version.
type Requirement struct {
	Constraints []Constraint
}

// ParseConstraint parses a single constraint. A bare version means "=".
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	op := OpEqual
	for _, o := range ops {
		if strings.HasPrefix(s, string(o)) {
			op = o
			s = strings.TrimSpace(strings.TrimPrefix(s, string(o)))
			break
		}
	}
	v, err := Parse(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid requirement: %w", err)
	}
	return Constraint{Op: op, Version: v}, nil
}

// ParseRequirement parses one or more comma separated constraints.
// An empty string yields the zero Requirement.
func ParseRequirement(s string) (Requirement, error) {
	if strings.TrimSpace(s) == "" {
		return Requirement{}, nil
	}
	return ParseRequirements(strings.Split(s, ","))
}

// ParseRequirements parses the requirement list found in podspec dependency
// declarations (e.g. ["~> 10.0", ">= 10.2"]).
func ParseRequirements(list []string) (Requirement, error) {
	var r Requirement
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		c, err := ParseConstraint(s)
		if err != nil {
			return Requirement{}, err
		}
		r.Constraints = append(r.Constraints, c)
	}
	return r, nil
}

// Merge returns a requirement satisfied only by versions that satisfy both r and o.
func (r Requirement) Merge(o Requirement) Requirement {
	out := Requirement{Constraints: make([]Constraint, 0, len(r.Constraints)+len(o.Constraints))}
	out.Constraints = append(out.Constraints, r.Constraints...)
	out.Constraints = append(out.Constraints, o.Constraints...)
	return out
}

// AllowsPrerelease reports whether any constraint names a pre-release.
// Pre-release versions are only selected when explicitly requested.
func (r Requirement) AllowsPrerelease() bool {
	for _, c := range r.Constraints {
		if c.Version.IsPrerelease() {
			return true
		}
	}
	return false
}

// Satisfied reports whether v meets every constraint.
func (r Requirement) Satisfied(v Version) bool {
	if v.IsPrerelease() && !r.AllowsPrerelease() {
		return false
	}
	for _, c := range r.Constraints {
		if !c.Satisfied(v) {
			return false
		}
	}
	return true
}

// String renders the requirement the way podspecs write it.
func (r Requirement) String() string {
	if len(r.Constraints) == 0 {
		return ">= 0"
	}
	parts := make([]string, len(r.Constraints))
	for i, c := range r.Constraints {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the constraint, e.g. "~> 1.2".
func (c Constraint) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Version)
}

// Satisfied reports whether v meets the constraint.
func (c Constraint) Satisfied(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	case OpPessimistic:
		return cmp >= 0 && v.Compare(bump(c.Version)) < 0
	}
	return false
}

// bump returns the exclusive upper bound of a pessimistic constraint:
// "~> 1.2.3" allows < 1.3, "~> 1.2" allows < 2.0, "~> 1" allows < 2.
func bump(v Version) Version {
	segs := v.Segments
	if len(segs) > 1 {
		segs = segs[:len(segs)-1]
	}
	next := make([]int, len(segs))
	copy(next, segs)
	next[len(next)-1]++
	parts := make([]string, len(next))
	for i, n := range next {
		parts[i] = fmt.Sprint(n)
	}
	return Version{Segments: next, Original: strings.Join(parts, ".")}
}

// Highest returns the highest candidate satisfying r.
func (r Requirement) Highest(candidates []string) (string, bool) {
	var (
		best  Version
		found bool
	)
	for _, s := range candidates {
		v, err := Parse(s)
		if err != nil || !r.Satisfied(v) {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best, found = v, true
		}
	}
	return best.Original, found
}
