package edgeql

import "fmt"

// Cardinality is the statically inferred multiplicity class of an
// expression's result. It drives how a result should be decoded
// (single value vs. slice) and has no effect on rendered query text.
type Cardinality int

const (
	// Empty: statically known to produce no elements.
	Empty Cardinality = iota
	// One: exactly one element.
	One
	// AtMostOne: zero or one element.
	AtMostOne
	// AtLeastOne: one or more elements.
	AtLeastOne
	// Many: any number of elements.
	Many
)

func (c Cardinality) String() string {
	switch c {
	case Empty:
		return "Empty"
	case One:
		return "One"
	case AtMostOne:
		return "AtMostOne"
	case AtLeastOne:
		return "AtLeastOne"
	case Many:
		return "Many"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// IsSingle reports whether the class guarantees at most one element.
func (c Cardinality) IsSingle() bool {
	return c == Empty || c == One || c == AtMostOne
}

// Required reports whether the class guarantees at least one element.
func (c Cardinality) Required() bool {
	return c == One || c == AtLeastOne
}

// Bounds in (lower, upper) form; upper -1 means unbounded. Only the
// five classes above are representable, so fromBounds collapses exact
// finite counts greater than one into AtLeastOne/Many.
func (c Cardinality) bounds() (lo, hi int) {
	switch c {
	case Empty:
		return 0, 0
	case One:
		return 1, 1
	case AtMostOne:
		return 0, 1
	case AtLeastOne:
		return 1, -1
	default:
		return 0, -1
	}
}

func fromBounds(lo, hi int) Cardinality {
	if hi == 0 {
		return Empty
	}
	switch {
	case lo >= 1 && hi == 1:
		return One
	case lo == 0 && hi == 1:
		return AtMostOne
	case lo >= 1:
		return AtLeastOne
	default:
		return Many
	}
}

func mulBound(a, b int) int {
	if a < 0 || b < 0 {
		if a == 0 || b == 0 {
			return 0
		}
		return -1
	}
	return a * b
}

func addBound(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	return a + b
}

func maxBound(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	if a > b {
		return a
	}
	return b
}

func minBound(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// cross is the cardinality of an elementwise operation over two
// operands (cartesian product of the input sets).
func (c Cardinality) cross(other Cardinality) Cardinality {
	al, ah := c.bounds()
	bl, bh := other.bounds()
	return fromBounds(mulBound(al, bl), mulBound(ah, bh))
}

// add is the cardinality of a set union of two operands.
func (c Cardinality) add(other Cardinality) Cardinality {
	al, ah := c.bounds()
	bl, bh := other.bounds()
	return fromBounds(addBound(al, bl), addBound(ah, bh))
}

// optional drops the lower bound, as a filter clause does.
func (c Cardinality) optional() Cardinality {
	_, hi := c.bounds()
	return fromBounds(0, hi)
}

// atMost caps the upper bound, as a literal limit clause does.
func (c Cardinality) atMost(n int) Cardinality {
	lo, hi := c.bounds()
	if lo > n {
		lo = n
	}
	return fromBounds(lo, minBound(hi, n))
}

// coalesce is the cardinality of `a ?? b`.
func (c Cardinality) coalesce(other Cardinality) Cardinality {
	al, ah := c.bounds()
	bl, bh := other.bounds()
	if al >= 1 {
		return c
	}
	return fromBounds(bl, maxBound(ah, bh))
}

// branch is the cardinality of `t if cond else f` for a single
// condition: one of the branches, per element of the condition.
func branch(cond, t, f Cardinality) Cardinality {
	tl, th := t.bounds()
	fl, fh := f.bounds()
	arm := fromBounds(minBound(tl, fl), maxBound(th, fh))
	return cond.cross(arm)
}
