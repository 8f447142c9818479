package sequencer

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// NumSteps is the fixed pattern length
const NumSteps = 16

// Pattern holds 16 on/off steps. Each step is an atomic so input handlers can
// toggle while the scheduler reads.
type Pattern struct {
	steps [NumSteps]atomic.Bool
}

// NewPattern returns an all-inactive pattern
func NewPattern() *Pattern {
	return &Pattern{}
}

// ParsePattern reads 16 cells: x, X or 1 is active; ., - or 0 is inactive.
// Spaces and | are ignored so "x...|x...|x...|x..." is accepted.
func ParsePattern(s string) (*Pattern, error) {
	cells := strings.Map(func(r rune) rune {
		if r == ' ' || r == '|' {
			return -1
		}
		return r
	}, s)

	if n := len([]rune(cells)); n != NumSteps {
		return nil, fmt.Errorf("%w: pattern has %d steps, want %d", ErrConfiguration, n, NumSteps)
	}

	p := NewPattern()
	for i, r := range []rune(cells) {
		switch r {
		case 'x', 'X', '1':
			p.steps[i].Store(true)
		case '.', '-', '0':
		default:
			return nil, fmt.Errorf("%w: pattern step %d: unexpected %q", ErrConfiguration, i, r)
		}
	}
	return p, nil
}

func checkIndex(i int) error {
	if i < 0 || i >= NumSteps {
		return fmt.Errorf("step %d out of range 0-%d", i, NumSteps-1)
	}
	return nil
}

// Toggle flips step i and returns its new state
func (p *Pattern) Toggle(i int) (bool, error) {
	if err := checkIndex(i); err != nil {
		return false, err
	}
	for {
		old := p.steps[i].Load()
		if p.steps[i].CompareAndSwap(old, !old) {
			return !old, nil
		}
	}
}

// Set forces step i on or off
func (p *Pattern) Set(i int, active bool) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	p.steps[i].Store(active)
	return nil
}

// Active reports whether step i sounds. Out of range is inactive.
func (p *Pattern) Active(i int) bool {
	if checkIndex(i) != nil {
		return false
	}
	return p.steps[i].Load()
}

// Snapshot copies all steps
func (p *Pattern) Snapshot() [NumSteps]bool {
	var out [NumSteps]bool
	for i := range p.steps {
		out[i] = p.steps[i].Load()
	}
	return out
}

// String renders the pattern in the ParsePattern format
func (p *Pattern) String() string {
	var b strings.Builder
	for i := range p.steps {
		if p.steps[i].Load() {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
