package rules

// PriorityTracker counts consecutive passes and rejected actions within one
// priority round.
type PriorityTracker struct {
	consecutivePasses int
	rejections        int
	maxRejections     int
}

// NewPriorityTracker creates a tracker. maxRejections <= 0 disables the
// rejection cap.
func NewPriorityTracker(maxRejections int) *PriorityTracker {
	return &PriorityTracker{maxRejections: maxRejections}
}

// Pass records a pass and reports whether both players have now passed in
// succession.
func (p *PriorityTracker) Pass() bool {
	p.consecutivePasses++
	p.rejections = 0
	return p.consecutivePasses >= 2
}

// Acted records an accepted non-pass action. The actor keeps priority and the
// pass count restarts.
func (p *PriorityTracker) Acted() {
	p.consecutivePasses = 0
	p.rejections = 0
}

// Rejected records a refused action and reports whether the cap on
// consecutive rejections has been reached.
func (p *PriorityTracker) Rejected() bool {
	p.rejections++
	return p.maxRejections > 0 && p.rejections >= p.maxRejections
}

// Passes returns the number of consecutive passes so far.
func (p *PriorityTracker) Passes() int {
	return p.consecutivePasses
}

// Reset clears both counters, e.g. after the top of the stack resolves.
func (p *PriorityTracker) Reset() {
	p.consecutivePasses = 0
	p.rejections = 0
}
