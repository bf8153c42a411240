package match

// Seq is a pull-based sequence of values.
//
// A Seq can stand in for a value sequence during matching.  The
// matcher only pulls as many elements as the pattern declares, so a
// Seq may be unbounded if the pattern ends in a BindingRest (which
// then captures the remaining Seq itself, unrealized).
type Seq interface {
	// Next returns the next element, or false when the sequence is
	// exhausted.
	Next() (interface{}, bool)
}

type sliceSeq struct {
	xs []interface{}
	at int
}

func (s *sliceSeq) Next() (interface{}, bool) {
	if len(s.xs) <= s.at {
		return nil, false
	}
	x := s.xs[s.at]
	s.at++
	return x, true
}

// SeqOf makes a Seq over the given elements.
func SeqOf(xs ...interface{}) Seq {
	return &sliceSeq{xs: xs}
}

type rangeSeq struct {
	at, to int
}

func (s *rangeSeq) Next() (interface{}, bool) {
	if s.to <= s.at {
		return nil, false
	}
	x := s.at
	s.at++
	return x, true
}

// RangeSeq makes a Seq counting from 'from' up to (but excluding)
// 'to'.
func RangeSeq(from, to int) Seq {
	return &rangeSeq{at: from, to: to}
}

type natSeq struct {
	at int
}

func (s *natSeq) Next() (interface{}, bool) {
	x := s.at
	s.at++
	return x, true
}

// NatSeq makes an unbounded Seq counting up from 'from'.  Only match
// it against a pattern with a don't-care rest binding (or realize the
// captured tail with Take, never Drain).
func NatSeq(from int) Seq {
	return &natSeq{at: from}
}

type stringSeq struct {
	runes []rune
	at    int
}

func (s *stringSeq) Next() (interface{}, bool) {
	if len(s.runes) <= s.at {
		return nil, false
	}
	x := string(s.runes[s.at])
	s.at++
	return x, true
}

// Drain realizes the rest of a finite Seq as a slice.
func Drain(s Seq) []interface{} {
	acc := make([]interface{}, 0, 8)
	for {
		x, have := s.Next()
		if !have {
			return acc
		}
		acc = append(acc, x)
	}
}

// Take realizes at most n more elements of a Seq.
func Take(s Seq, n int) []interface{} {
	acc := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		x, have := s.Next()
		if !have {
			break
		}
		acc = append(acc, x)
	}
	return acc
}
