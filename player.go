package marionette

import "math"

// Player is a playback transport over a Binder. It owns the clock, wraps it
// at the end of the material when looping, and feeds an optional PatchScript
// into the Binder's queue before each frame.
type Player struct {
	binder   *Binder
	script   *PatchScript
	duration float64
	loop     bool

	t       float64
	started bool
	loops   int
}

// NewPlayer creates a Player over b for material of the given duration in
// seconds. A non-positive duration never ends and never loops.
func NewPlayer(b *Binder, duration float64, loop bool) *Player {
	return &Player{binder: b, duration: duration, loop: loop}
}

// SetScript attaches a patch script. The script runs once over the first
// pass: patch edits persist across loops, so replaying them would repeat
// connects that already exist.
func (p *Player) SetScript(ps *PatchScript) {
	p.script = ps
}

// Binder returns the driven Binder.
func (p *Player) Binder() *Binder { return p.binder }

// Time returns the time of the last evaluated frame.
func (p *Player) Time() float64 { return p.t }

// Duration returns the material length.
func (p *Player) Duration() float64 { return p.duration }

// Loops returns how many times playback has wrapped.
func (p *Player) Loops() int { return p.loops }

// Done reports whether non-looping playback has reached the end.
func (p *Player) Done() bool {
	return !p.loop && p.duration > 0 && p.started && p.t >= p.duration
}

// Advance moves the clock forward by dt seconds and evaluates the frame. The
// first call evaluates time zero. When looping, crossing the end wraps the
// clock and the Binder, seeing time go backwards, resets its state. Without
// looping the clock stops at the end.
func (p *Player) Advance(dt float64) (FrameReport, error) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return FrameReport{}, validationf("advance: invalid step %v", dt)
	}
	next := p.t
	if p.started {
		next += dt
	}
	if p.duration > 0 && next >= p.duration {
		if p.loop {
			next = math.Mod(next, p.duration)
			p.loops++
		} else {
			next = p.duration
		}
	}
	return p.evaluate(next)
}

// Seek jumps to t and evaluates it.
func (p *Player) Seek(t float64) (FrameReport, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return FrameReport{}, validationf("seek: invalid time %v", t)
	}
	if p.duration > 0 && t > p.duration {
		t = p.duration
	}
	return p.evaluate(t)
}

func (p *Player) evaluate(t float64) (FrameReport, error) {
	if p.script != nil {
		p.script.Step(t, p.binder.Queue())
	}
	report, err := p.binder.Evaluate(t)
	if err != nil {
		return report, err
	}
	p.t = t
	p.started = true
	return report, nil
}
