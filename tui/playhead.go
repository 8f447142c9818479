package tui

// Playhead carries highlighted steps from the display timers to the UI.
// Only the latest step is kept.
type Playhead struct {
	ch chan int
}

func NewPlayhead() *Playhead {
	return &Playhead{ch: make(chan int, 1)}
}

// Deliver replaces any step the UI has not picked up yet
func (p *Playhead) Deliver(step int) {
	for {
		select {
		case p.ch <- step:
			return
		default:
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

// C receives delivered steps
func (p *Playhead) C() <-chan int {
	return p.ch
}
