package marionette

import (
	"math"

	"github.com/tanema/gween/ease"
)

// EffectorKind tags the behavior of an Effector. The set is closed.
type EffectorKind uint8

const (
	KindPulseTrigger    EffectorKind = iota // threshold-crossing trigger with eased decay
	KindContinuousScale                     // linear remap of the driving value
	KindDirectionSelect                     // bucketed sprite-variant selection with hysteresis
)

var kindNames = [...]string{
	KindPulseTrigger:    "pulse-trigger",
	KindContinuousScale: "continuous-scale",
	KindDirectionSelect: "direction-select",
}

func (k EffectorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseEffectorKind converts a kind name such as "pulse-trigger" to an
// EffectorKind.
func ParseEffectorKind(name string) (EffectorKind, bool) {
	for i, n := range kindNames {
		if n == name {
			return EffectorKind(i), true
		}
	}
	return 0, false
}

// Input is one binding's contribution to an effector for the current frame.
// Value is already normalized to [0, 1] and smoothed.
type Input struct {
	Binding BindingID
	Signal  string
	Value   float64
	Weight  float64
}

// Output is one parameter write produced by an effector. Delta is already
// multiplied by the contributing binding weight. For ParamSprite writes,
// Variant names the selection and Delta is its vote strength.
type Output struct {
	Target  ParamRef
	Delta   float64
	Variant string
}

// Tap routes a scaled copy of an effector's delta to an additional bone
// parameter, e.g. a mirrored arm with Gain -1.
type Tap struct {
	Target ParamRef
	Gain   float64
}

// PulseConfig configures a pulse-trigger effector.
type PulseConfig struct {
	// Threshold the driving value must cross upward to fire.
	Threshold float64
	// Amplitude of the delta at the moment of firing.
	Amplitude float64
	// Duration in seconds until the delta has decayed to zero.
	Duration float64
	// Ease shapes the decay from Amplitude to 0. Nil is linear.
	Ease ease.TweenFunc
	// Taps are extra parameters receiving Gain × delta.
	Taps []Tap
}

// ScaleConfig configures a continuous-scale effector.
type ScaleConfig struct {
	// Out is the delta range the normalized value [0, 1] maps onto.
	Out Range
	// Taps are extra parameters receiving Gain × delta.
	Taps []Tap
}

// DirectionConfig configures a direction-select effector.
type DirectionConfig struct {
	// Variants are the sprite variant names, one per bucket, low to high.
	Variants []string
	// Deadband is the hysteresis margin as a fraction of one bucket width,
	// in [0, 0.5).
	Deadband float64
}

// pulseMemo is the last value seen from one binding, for crossing detection.
type pulseMemo struct {
	binding BindingID
	value   float64
}

// Effector is a stateful behavior that turns sampled signal values into bone
// parameter deltas. A single flat struct is used for all kinds so evaluation
// switches on Kind instead of dispatching through an interface.
//
// Effectors never read a clock; time is always passed in.
type Effector struct {
	ID   string
	Kind EffectorKind

	target  ParamRef
	outputs []ParamRef
	taps    []Tap

	pulse     PulseConfig
	scale     ScaleConfig
	direction DirectionConfig

	// Time tracking
	lastTime float64
	timed    bool

	// Pulse state
	prev       []pulseMemo
	nextPrev   []pulseMemo
	fired      bool
	fireTime   float64
	fireWeight float64

	// Direction state; -1 when no bucket is selected yet.
	bucket int

	out []Output
}

// NewPulseTrigger creates a pulse-trigger effector writing target. It fires
// when a driving value crosses cfg.Threshold upward and then decays over
// cfg.Duration. Re-triggering restarts the decay window instead of stacking.
// With several inputs only the largest crossing value fires.
func NewPulseTrigger(id string, target ParamRef, cfg PulseConfig) (*Effector, error) {
	if err := checkEffector(id, target, cfg.Taps); err != nil {
		return nil, err
	}
	if cfg.Duration <= 0 {
		return nil, validationf("effector %q: pulse duration %g must be positive", id, cfg.Duration)
	}
	e := newEffector(id, KindPulseTrigger, target, cfg.Taps)
	e.pulse = cfg
	return e, nil
}

// NewContinuousScale creates a stateless effector that remaps the normalized
// driving value onto cfg.Out every evaluation. Several inputs add up, each
// scaled by its binding weight, so disabling one leaves the others unchanged.
func NewContinuousScale(id string, target ParamRef, cfg ScaleConfig) (*Effector, error) {
	if err := checkEffector(id, target, cfg.Taps); err != nil {
		return nil, err
	}
	e := newEffector(id, KindContinuousScale, target, cfg.Taps)
	e.scale = cfg
	return e, nil
}

// NewDirectionSelect creates an effector that quantizes the averaged driving
// value into len(cfg.Variants) buckets and selects that variant on bone. The
// selection only changes once the value leaves the current bucket by more
// than the deadband.
func NewDirectionSelect(id string, bone BoneID, cfg DirectionConfig) (*Effector, error) {
	if id == "" {
		return nil, validationf("effector: empty id")
	}
	if len(cfg.Variants) == 0 {
		return nil, validationf("effector %q: direction select needs at least one variant", id)
	}
	if cfg.Deadband < 0 || cfg.Deadband >= 0.5 {
		return nil, validationf("effector %q: deadband %g outside [0, 0.5)", id, cfg.Deadband)
	}
	e := newEffector(id, KindDirectionSelect, ParamRef{Bone: bone, Param: ParamSprite}, nil)
	e.direction = DirectionConfig{
		Variants: append([]string(nil), cfg.Variants...),
		Deadband: cfg.Deadband,
	}
	return e, nil
}

func checkEffector(id string, target ParamRef, taps []Tap) error {
	if id == "" {
		return validationf("effector: empty id")
	}
	if !target.Param.numeric() {
		return validationf("effector %q: target parameter %s is not numeric", id, target.Param)
	}
	for _, tap := range taps {
		if !tap.Target.Param.numeric() {
			return validationf("effector %q: tap parameter %s is not numeric", id, tap.Target.Param)
		}
	}
	return nil
}

func newEffector(id string, kind EffectorKind, target ParamRef, taps []Tap) *Effector {
	e := &Effector{
		ID:     id,
		Kind:   kind,
		target: target,
		taps:   append([]Tap(nil), taps...),
		bucket: -1,
	}
	e.outputs = make([]ParamRef, 0, 1+len(taps))
	e.outputs = append(e.outputs, target)
	for _, tap := range taps {
		e.outputs = append(e.outputs, tap.Target)
	}
	return e
}

// Target returns the primary parameter the effector writes.
func (e *Effector) Target() ParamRef {
	return e.target
}

// Outputs returns the static set of parameters this effector may write. The
// returned slice MUST NOT be mutated by the caller.
func (e *Effector) Outputs() []ParamRef {
	return e.outputs
}

// Reset clears all evaluation state, as after a transport reset.
func (e *Effector) Reset() {
	e.timed = false
	e.lastTime = 0
	e.prev = e.prev[:0]
	e.fired = false
	e.fireTime = 0
	e.fireWeight = 0
	e.bucket = -1
}

// Evaluate runs the effector for time t with every input bound to it this
// frame and returns its parameter writes. The returned slice is reused by
// the next call. No inputs means no writes. An input whose binding was
// absent from the previous call counts as coming from below the threshold.
// A t earlier than the previous call fails with ErrState and leaves the
// state untouched.
func (e *Effector) Evaluate(t float64, inputs []Input) ([]Output, error) {
	if e.timed && t < e.lastTime {
		return nil, statef("effector %q: time %g precedes %g", e.ID, t, e.lastTime)
	}
	e.lastTime = t
	e.timed = true

	e.out = e.out[:0]
	if len(inputs) == 0 {
		// Unplugged inputs are forgotten so replugging can trigger again.
		e.prev = e.prev[:0]
		return e.out, nil
	}

	switch e.Kind {
	case KindPulseTrigger:
		e.emit(e.evalPulse(t, inputs))
	case KindContinuousScale:
		e.emit(e.evalScale(inputs))
	case KindDirectionSelect:
		e.evalDirection(inputs)
	}
	return e.out, nil
}

func (e *Effector) emit(delta float64) {
	e.out = append(e.out, Output{Target: e.target, Delta: delta})
	for _, tap := range e.taps {
		e.out = append(e.out, Output{Target: tap.Target, Delta: delta * tap.Gain})
	}
}

func (e *Effector) evalPulse(t float64, inputs []Input) float64 {
	th := e.pulse.Threshold
	best := -1
	e.nextPrev = e.nextPrev[:0]
	for i, in := range inputs {
		prev, seen := e.previous(in.Binding)
		if (!seen || prev < th) && in.Value >= th {
			if best < 0 || in.Value > inputs[best].Value {
				best = i
			}
		}
		e.nextPrev = append(e.nextPrev, pulseMemo{binding: in.Binding, value: in.Value})
	}
	e.prev, e.nextPrev = e.nextPrev, e.prev

	if best >= 0 {
		e.fired = true
		e.fireTime = t
		e.fireWeight = inputs[best].Weight
	}
	if !e.fired {
		return 0
	}
	elapsed := t - e.fireTime
	if elapsed >= e.pulse.Duration {
		e.fired = false
		return 0
	}
	return e.fireWeight * decay(e.pulse.Ease, elapsed, e.pulse.Amplitude, e.pulse.Duration)
}

func (e *Effector) previous(b BindingID) (float64, bool) {
	for _, m := range e.prev {
		if m.binding == b {
			return m.value, true
		}
	}
	return 0, false
}

func (e *Effector) evalScale(inputs []Input) float64 {
	var sum float64
	for _, in := range inputs {
		sum += in.Weight * e.scale.Out.Lerp(in.Value)
	}
	return sum
}

func (e *Effector) evalDirection(inputs []Input) {
	var value, weight float64
	for _, in := range inputs {
		value += in.Value
		weight += in.Weight
	}
	n := float64(len(inputs))
	value /= n
	weight /= n

	buckets := len(e.direction.Variants)
	raw := int(math.Floor(value * float64(buckets)))
	raw = max(0, min(raw, buckets-1))

	if e.bucket < 0 {
		e.bucket = raw
	} else if raw != e.bucket {
		width := 1 / float64(buckets)
		margin := e.direction.Deadband * width
		lo := float64(e.bucket)*width - margin
		hi := float64(e.bucket+1)*width + margin
		if value < lo || value > hi {
			e.bucket = raw
		}
	}
	e.out = append(e.out, Output{
		Target:  e.target,
		Delta:   weight,
		Variant: e.direction.Variants[e.bucket],
	})
}

// Bucket returns the direction-select effector's current bucket, -1 before
// the first evaluation or for other kinds.
func (e *Effector) Bucket() int {
	if e.Kind != KindDirectionSelect {
		return -1
	}
	return e.bucket
}

// Pulse returns the pulse configuration. Zero for other kinds.
func (e *Effector) Pulse() PulseConfig { return e.pulse }

// Scale returns the continuous-scale configuration. Zero for other kinds.
func (e *Effector) Scale() ScaleConfig { return e.scale }

// Direction returns the direction-select configuration. Zero for other kinds.
func (e *Effector) Direction() DirectionConfig { return e.direction }
