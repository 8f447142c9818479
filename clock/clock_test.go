package clock

import (
	"testing"
	"time"
)

func TestMonotonicAdvances(t *testing.T) {
	c := NewMonotonic()
	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()
	if b <= a {
		t.Errorf("clock did not advance: %v then %v", a, b)
	}
}

func TestManualNeverGoesBack(t *testing.T) {
	c := NewManual(1.0)
	c.Set(0.5)
	if want, got := 1.0, c.Now(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	c.Advance(0.25)
	c.Advance(-3)
	if want, got := 1.25, c.Now(); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestUntil(t *testing.T) {
	c := NewManual(2.0)
	if want, got := 500*time.Millisecond, Until(c, 2.5); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := time.Duration(0), Until(c, 1.0); want != got {
		t.Errorf("past deadline: want %v, got %v", want, got)
	}
}
