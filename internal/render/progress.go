// internal/render/progress.go - Throttled draw progress
package render

// progress reports the completion of n joined tasks to fn in at most steps
// distinct fractions plus one final 1.0
type progress struct {
	n     int
	step  int
	fn    func(float32)
	final bool
}

func newProgress(n, steps int, fn func(float32)) *progress {
	if steps <= 0 {
		steps = 1
	}
	step := n / steps
	if step < 1 {
		step = 1
	}
	return &progress{n: n, step: step, fn: fn}
}

// joined is called with the submission index of each task after it is joined
func (p *progress) joined(i int) {
	if p.n == 0 || i%p.step != 0 {
		return
	}
	p.fn(float32(i) / float32(p.n))
}

// done emits the terminal 1.0 once, and only for a non-empty tile set
func (p *progress) done() {
	if p.n == 0 || p.final {
		return
	}
	p.final = true
	p.fn(1)
}
