package marionette

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BindingID identifies a binding for its whole lifetime. IDs are never
// reused, so a stale id held by a UI is rejected instead of hitting a newer
// binding.
type BindingID string

// FrameObserver receives a summary of every evaluated frame. It is the
// optional bridge to an ECS or other external collaborator.
type FrameObserver interface {
	ObserveFrame(event FrameEvent)
}

// FrameEvent summarizes one Evaluate call for observers.
type FrameEvent struct {
	Time       float64
	Bindings   int // enabled bindings sampled
	Effectors  int // effectors evaluated
	Writes     int // resolved parameter writes
	Clamped    int // writes clamped to their limit
	Recomputed int // world transforms recomputed
	Reset      bool
}

// FrameReport is the result of Evaluate. Errors collected here were not
// fatal: the frame was still resolved.
type FrameReport struct {
	FrameEvent

	// RangeErrors lists signal values that fell outside their domain this
	// frame and were clamped. Each wraps ErrRange.
	RangeErrors []error

	// EffectorErrors lists effectors that rejected this frame. Their
	// contribution is dropped for the frame.
	EffectorErrors []error

	// Commands holds the outcome of every patch command drained before
	// the frame was evaluated, in submission order.
	Commands []CommandResult
}

// BindingInfo is a read-only view of a binding.
type BindingInfo struct {
	ID        BindingID
	Signal    string
	Effector  string
	Weight    float64
	Enabled   bool
	Smoothing Smoothing
}

// Conflict reports a bone parameter written by more than one effector.
// Conflicts are legal; they are resolved by weighted sum.
type Conflict struct {
	Target    ParamRef
	Effectors []string
}

type binding struct {
	id       BindingID
	signal   *Signal
	effector *Effector
	weight   float64
	enabled  bool

	smoothing Smoothing
	smooth    SmoothState

	domain    Range
	hasDomain bool
}

func (bd *binding) info() BindingInfo {
	return BindingInfo{
		ID:        bd.id,
		Signal:    bd.signal.Name(),
		Effector:  bd.effector.ID,
		Weight:    bd.weight,
		Enabled:   bd.enabled,
		Smoothing: bd.smoothing,
	}
}

// BindingOption configures a binding created by Connect.
type BindingOption func(*binding)

// WithSmoothing smooths the normalized signal value per binding.
func WithSmoothing(sm Smoothing) BindingOption {
	return func(bd *binding) {
		bd.smoothing = sm
	}
}

// WithNormalizeRange overrides the signal's domain when normalizing for this
// binding.
func WithNormalizeRange(r Range) BindingOption {
	return func(bd *binding) {
		bd.domain = r
		bd.hasDomain = true
	}
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(b *Binder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithObserver registers a FrameObserver called at the end of every frame.
func WithObserver(o FrameObserver) Option {
	return func(b *Binder) {
		b.observer = o
	}
}

// effectorGroup collects the inputs of one effector for the current frame.
type effectorGroup struct {
	effector *Effector
	inputs   []Input
}

type vote struct {
	variant string
	weight  float64
}

// pendingBone accumulates the resolved writes for one bone.
type pendingBone struct {
	bone    BoneID
	sums    [ParamScaleY + 1]float64
	written [ParamScaleY + 1]bool
	numeric bool
	votes   []vote
}

// Binder owns the patch-bay: the registered signals and effectors, the
// bindings between them, and the per-frame evaluation pipeline that writes
// bone parameters.
//
// A Binder is not safe for concurrent use. Other goroutines submit changes
// through Queue, which Evaluate drains at the start of each frame.
type Binder struct {
	bones *BoneSystem
	log   *slog.Logger

	observer FrameObserver
	queue    *PatchQueue
	debug    bool

	signals       map[string]*Signal
	signalOrder   []string
	effectors     map[string]*Effector
	effectorOrder []string

	// bindings is in creation order, which fixes evaluation and summation
	// order.
	bindings []*binding
	byID     map[BindingID]*binding

	lastTime float64
	timed    bool

	// Per-frame scratch, reused.
	active    []*binding
	groups    []effectorGroup
	groupIdx  map[*Effector]int
	pending   []pendingBone
	pendIdx   map[BoneID]int
	cmdBuf    []PatchCommand
	prevBones []BoneID
	curBones  []BoneID
}

// NewBinder creates a Binder writing into bones.
func NewBinder(bones *BoneSystem, opts ...Option) *Binder {
	b := &Binder{
		bones:     bones,
		log:       slog.New(slog.DiscardHandler),
		queue:     NewPatchQueue(),
		signals:   make(map[string]*Signal),
		effectors: make(map[string]*Effector),
		byID:      make(map[BindingID]*binding),
		groupIdx:  make(map[*Effector]int),
		pendIdx:   make(map[BoneID]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bones returns the bone system the binder writes into.
func (b *Binder) Bones() *BoneSystem {
	return b.bones
}

// Queue returns the patch queue drained by Evaluate. It is safe to use from
// any goroutine.
func (b *Binder) Queue() *PatchQueue {
	return b.queue
}

// --- Registration ---

// AddSignal registers a signal under its name.
func (b *Binder) AddSignal(s *Signal) error {
	if s == nil {
		return validationf("add signal: nil signal")
	}
	if _, dup := b.signals[s.Name()]; dup {
		return validationf("add signal %q: duplicate id", s.Name())
	}
	b.signals[s.Name()] = s
	b.signalOrder = append(b.signalOrder, s.Name())
	return nil
}

// Signal returns the registered signal with the given id.
func (b *Binder) Signal(id string) (*Signal, bool) {
	s, ok := b.signals[id]
	return s, ok
}

// Signals returns the registered signal ids in registration order.
func (b *Binder) Signals() []string {
	return append([]string(nil), b.signalOrder...)
}

// AddEffector registers an effector. Every bone it writes must exist.
func (b *Binder) AddEffector(e *Effector) error {
	if e == nil {
		return validationf("add effector: nil effector")
	}
	if _, dup := b.effectors[e.ID]; dup {
		return validationf("add effector %q: duplicate id", e.ID)
	}
	for _, ref := range e.Outputs() {
		if !b.bones.valid(ref.Bone) {
			return validationf("add effector %q: unknown bone %d", e.ID, ref.Bone)
		}
	}
	b.effectors[e.ID] = e
	b.effectorOrder = append(b.effectorOrder, e.ID)
	return nil
}

// Effector returns the registered effector with the given id.
func (b *Binder) Effector(id string) (*Effector, bool) {
	e, ok := b.effectors[id]
	return e, ok
}

// Effectors returns the registered effector ids in registration order.
func (b *Binder) Effectors() []string {
	return append([]string(nil), b.effectorOrder...)
}

// RemoveSignal unregisters a signal and every binding reading it.
func (b *Binder) RemoveSignal(id string) error {
	if _, ok := b.signals[id]; !ok {
		return validationf("remove signal: unknown signal %q", id)
	}
	n := b.removeBindings(func(bd *binding) bool { return bd.signal.Name() == id })
	delete(b.signals, id)
	b.signalOrder = removeString(b.signalOrder, id)
	b.log.Debug("signal removed", "signal", id, "bindings_removed", n)
	return nil
}

// RemoveEffector unregisters an effector. Bindings targeting it are removed
// first so none is left dangling.
func (b *Binder) RemoveEffector(id string) error {
	e, ok := b.effectors[id]
	if !ok {
		return validationf("remove effector: unknown effector %q", id)
	}
	n := b.removeBindings(func(bd *binding) bool { return bd.effector == e })
	delete(b.effectors, id)
	b.effectorOrder = removeString(b.effectorOrder, id)
	b.log.Debug("effector removed", "effector", id, "bindings_removed", n)
	return nil
}

func (b *Binder) removeBindings(match func(*binding) bool) int {
	kept := b.bindings[:0]
	n := 0
	for _, bd := range b.bindings {
		if match(bd) {
			delete(b.byID, bd.id)
			n++
			continue
		}
		kept = append(kept, bd)
	}
	clear(b.bindings[len(kept):])
	b.bindings = kept
	return n
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// --- Bindings ---

// Connect creates an enabled binding from a signal to an effector with the
// given weight. Unknown ids and a second enabled binding of the same pair
// are rejected and leave the binding set unchanged.
func (b *Binder) Connect(signal, effector string, weight float64, opts ...BindingOption) (BindingID, error) {
	s, ok := b.signals[signal]
	if !ok {
		return "", validationf("connect: unknown signal %q", signal)
	}
	e, ok := b.effectors[effector]
	if !ok {
		return "", validationf("connect: unknown effector %q", effector)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return "", validationf("connect %s -> %s: invalid weight %v", signal, effector, weight)
	}
	if b.enabledPair(s, e, nil) != nil {
		return "", validationf("connect %s -> %s: already connected", signal, effector)
	}

	bd := &binding{
		signal:   s,
		effector: e,
		weight:   weight,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(bd)
	}
	if err := bd.smoothing.Validate(); err != nil {
		return "", err
	}
	if bd.hasDomain && bd.domain.Min > bd.domain.Max {
		return "", validationf("connect %s -> %s: normalize range min %g > max %g",
			signal, effector, bd.domain.Min, bd.domain.Max)
	}

	bd.id = BindingID(uuid.NewString())
	b.bindings = append(b.bindings, bd)
	b.byID[bd.id] = bd
	b.log.Debug("binding connected", "binding", bd.id, "signal", signal, "effector", effector, "weight", weight)
	return bd.id, nil
}

// Disconnect removes a binding.
func (b *Binder) Disconnect(id BindingID) error {
	bd, ok := b.byID[id]
	if !ok {
		return validationf("disconnect: unknown binding %q", id)
	}
	b.removeBindings(func(x *binding) bool { return x == bd })
	b.log.Debug("binding disconnected", "binding", id)
	return nil
}

// Enable re-enables a disabled binding. Enabling is rejected if another
// enabled binding already connects the same pair.
func (b *Binder) Enable(id BindingID) error {
	bd, ok := b.byID[id]
	if !ok {
		return validationf("enable: unknown binding %q", id)
	}
	if bd.enabled {
		return nil
	}
	if b.enabledPair(bd.signal, bd.effector, bd) != nil {
		return validationf("enable %q: %s -> %s already connected", id, bd.signal.Name(), bd.effector.ID)
	}
	bd.enabled = true
	return nil
}

// Disable keeps a binding but excludes it from evaluation. Its smoothing
// state is dropped so re-enabling starts fresh.
func (b *Binder) Disable(id BindingID) error {
	bd, ok := b.byID[id]
	if !ok {
		return validationf("disable: unknown binding %q", id)
	}
	bd.enabled = false
	bd.smooth = SmoothState{}
	return nil
}

// SetWeight changes a binding's weight.
func (b *Binder) SetWeight(id BindingID, weight float64) error {
	bd, ok := b.byID[id]
	if !ok {
		return validationf("set weight: unknown binding %q", id)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return validationf("set weight %q: invalid weight %v", id, weight)
	}
	bd.weight = weight
	return nil
}

// Binding returns the binding with the given id.
func (b *Binder) Binding(id BindingID) (BindingInfo, bool) {
	bd, ok := b.byID[id]
	if !ok {
		return BindingInfo{}, false
	}
	return bd.info(), true
}

// Bindings enumerates all bindings in creation order.
func (b *Binder) Bindings() []BindingInfo {
	out := make([]BindingInfo, len(b.bindings))
	for i, bd := range b.bindings {
		out[i] = bd.info()
	}
	return out
}

// Find returns the binding connecting signal to effector, preferring an
// enabled one.
func (b *Binder) Find(signal, effector string) (BindingID, bool) {
	var found *binding
	for _, bd := range b.bindings {
		if bd.signal.Name() != signal || bd.effector.ID != effector {
			continue
		}
		if bd.enabled {
			return bd.id, true
		}
		if found == nil {
			found = bd
		}
	}
	if found == nil {
		return "", false
	}
	return found.id, true
}

func (b *Binder) enabledPair(s *Signal, e *Effector, except *binding) *binding {
	for _, bd := range b.bindings {
		if bd != except && bd.enabled && bd.signal == s && bd.effector == e {
			return bd
		}
	}
	return nil
}

// Conflicts lists every concrete bone parameter written by more than one
// registered effector, ordered by bone then parameter.
func (b *Binder) Conflicts() []Conflict {
	writers := make(map[ParamRef][]string)
	for _, id := range b.effectorOrder {
		for _, ref := range b.effectors[id].Outputs() {
			axes := ref.Param.axes()
			if ref.Param == ParamSprite {
				axes = []Param{ParamSprite}
			}
			for _, axis := range axes {
				key := ParamRef{Bone: ref.Bone, Param: axis}
				list := writers[key]
				if len(list) > 0 && list[len(list)-1] == id {
					continue
				}
				writers[key] = append(list, id)
			}
		}
	}
	var out []Conflict
	for ref, ids := range writers {
		if len(ids) > 1 {
			out = append(out, Conflict{Target: ref, Effectors: ids})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Target.Bone != out[j].Target.Bone {
			return out[i].Target.Bone < out[j].Target.Bone
		}
		return out[i].Target.Param < out[j].Target.Param
	})
	return out
}

// --- Evaluation ---

// Reset clears every effector's and binding's evaluation state, as after a
// transport reset or a seek. Bones return to their rest pose on the next
// Evaluate.
func (b *Binder) Reset() {
	for _, id := range b.effectorOrder {
		b.effectors[id].Reset()
	}
	for _, bd := range b.bindings {
		bd.smooth = SmoothState{}
	}
	b.timed = false
	b.lastTime = 0
}

// Evaluate runs one frame at playback time t:
//
//  1. drain the patch queue;
//  2. snapshot the enabled bindings;
//  3. sample, normalize, and smooth each binding's signal;
//  4. evaluate every effector once with all of its inputs, in registration
//     order;
//  5. sum the weighted deltas per bone parameter over the rest pose and
//     clamp to the parameter's limit;
//  6. recompute world transforms.
//
// Binding changes made while a frame is evaluated apply to the next frame.
// A t earlier than the previous frame is treated as a seek and resets all
// evaluation state first.
func (b *Binder) Evaluate(t float64) (FrameReport, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return FrameReport{}, validationf("evaluate: invalid time %v", t)
	}
	if !b.bones.Finalized() {
		return FrameReport{}, statef("evaluate: bone system is not finalized")
	}

	var stats debugStats
	start := time.Now()

	report := FrameReport{FrameEvent: FrameEvent{Time: t}}
	b.cmdBuf = b.queue.drain(b.cmdBuf[:0])
	for _, cmd := range b.cmdBuf {
		report.Commands = append(report.Commands, b.apply(cmd))
	}

	if b.timed && t < b.lastTime {
		b.log.Info("time moved backwards, resetting evaluation state", "from", b.lastTime, "to", t)
		b.Reset()
		report.Reset = true
	}

	b.active = b.active[:0]
	for _, bd := range b.bindings {
		if bd.enabled {
			b.active = append(b.active, bd)
		}
	}
	report.Bindings = len(b.active)

	b.gather(t, &report)
	stats.sampleTime = time.Since(start)

	mark := time.Now()
	for _, id := range b.effectorOrder {
		e := b.effectors[id]
		var inputs []Input
		if gi, ok := b.groupIdx[e]; ok {
			inputs = b.groups[gi].inputs
		}
		outs, err := e.Evaluate(t, inputs)
		if err != nil {
			b.log.Warn("effector rejected frame", "effector", id, "error", err)
			report.EffectorErrors = append(report.EffectorErrors, err)
			continue
		}
		if len(inputs) == 0 {
			continue
		}
		report.Effectors++
		b.accumulate(outs)
	}
	stats.effectorTime = time.Since(mark)

	mark = time.Now()
	b.resolve(&report)
	stats.resolveTime = time.Since(mark)

	mark = time.Now()
	report.Recomputed = b.bones.ComputeWorldTransforms()
	stats.worldTime = time.Since(mark)

	b.lastTime = t
	b.timed = true

	if b.observer != nil {
		b.observer.ObserveFrame(report.FrameEvent)
	}
	if b.debug {
		stats.frame = report.FrameEvent
		b.debugLog(stats)
	}
	return report, nil
}

// gather samples every active binding and groups the inputs per effector,
// each group in binding order.
func (b *Binder) gather(t float64, report *FrameReport) {
	for i := range b.groups {
		b.groups[i].inputs = b.groups[i].inputs[:0]
	}
	b.groups = b.groups[:0]
	clear(b.groupIdx)

	for _, bd := range b.active {
		domain := bd.signal.Domain()
		if bd.hasDomain {
			domain = bd.domain
		}
		raw := bd.signal.Sample(t)
		if bd.effector.Kind == KindPulseTrigger && b.timed && t > b.lastTime {
			// Triggers see every onset since the last frame, even at low frame rates.
			raw = bd.signal.Peak(b.lastTime, t)
		}
		v, rerr := normalizeChecked(bd.signal.Name(), raw, domain)
		if rerr != nil {
			report.RangeErrors = append(report.RangeErrors, rerr)
		}
		if sv, st, err := bd.smoothing.Step(t, v, bd.smooth); err == nil {
			v = sv
			bd.smooth = st
		} else {
			// Same frame evaluated again: hold the filtered value.
			v = bd.smooth.Value()
		}

		gi, ok := b.groupIdx[bd.effector]
		if !ok {
			gi = len(b.groups)
			b.groupIdx[bd.effector] = gi
			if gi < cap(b.groups) {
				b.groups = b.groups[:gi+1]
				b.groups[gi].effector = bd.effector
			} else {
				b.groups = append(b.groups, effectorGroup{effector: bd.effector})
			}
		}
		b.groups[gi].inputs = append(b.groups[gi].inputs, Input{
			Binding: bd.id,
			Signal:  bd.signal.Name(),
			Value:   v,
			Weight:  bd.weight,
		})
	}
}

func (b *Binder) pendingFor(id BoneID) *pendingBone {
	if i, ok := b.pendIdx[id]; ok {
		return &b.pending[i]
	}
	i := len(b.pending)
	b.pendIdx[id] = i
	if i < cap(b.pending) {
		b.pending = b.pending[:i+1]
		votes := b.pending[i].votes[:0]
		b.pending[i] = pendingBone{bone: id, votes: votes}
	} else {
		b.pending = append(b.pending, pendingBone{bone: id})
	}
	return &b.pending[i]
}

func (b *Binder) accumulate(outs []Output) {
	for _, o := range outs {
		p := b.pendingFor(o.Target.Bone)
		if o.Target.Param == ParamSprite {
			p.addVote(o.Variant, o.Delta)
			continue
		}
		for _, axis := range o.Target.Param.axes() {
			p.sums[axis] += o.Delta
			p.written[axis] = true
			p.numeric = true
		}
	}
}

func (p *pendingBone) addVote(variant string, weight float64) {
	for i := range p.votes {
		if p.votes[i].variant == variant {
			p.votes[i].weight += weight
			return
		}
	}
	p.votes = append(p.votes, vote{variant: variant, weight: weight})
}

// resolve writes the accumulated deltas over each bone's rest pose. Bones
// written last frame but not this one return to rest.
func (b *Binder) resolve(report *FrameReport) {
	b.curBones = b.curBones[:0]
	for i := range b.pending {
		p := &b.pending[i]
		b.curBones = append(b.curBones, p.bone)

		rest := b.bones.bones[p.bone].rest
		local := rest
		if p.numeric {
			for axis := ParamX; axis <= ParamScaleY; axis++ {
				if !p.written[axis] {
					continue
				}
				v := rest.Get(axis) + p.sums[axis]
				lim := b.bones.Limit(p.bone, axis)
				if !lim.Contains(v) {
					report.Clamped++
					v = lim.Clamp(v)
				}
				local = local.With(axis, v)
				report.Writes++
			}
		}
		b.setLocal(p.bone, local)

		if len(p.votes) > 0 {
			best := 0
			for j := 1; j < len(p.votes); j++ {
				if p.votes[j].weight > p.votes[best].weight {
					best = j
				}
			}
			b.setVariant(p.bone, p.votes[best].variant)
			report.Writes++
		} else {
			b.setVariant(p.bone, b.bones.restVariantOf(p.bone))
		}
	}

	for _, id := range b.prevBones {
		if _, ok := b.pendIdx[id]; ok {
			continue
		}
		b.setLocal(id, b.bones.bones[id].rest)
		b.setVariant(id, b.bones.restVariantOf(id))
	}

	b.prevBones, b.curBones = b.curBones, b.prevBones
	b.pending = b.pending[:0]
	clear(b.pendIdx)
}

// setLocal only touches bones whose transform changed so clean subtrees stay
// clean.
func (b *Binder) setLocal(id BoneID, t Transform) {
	if b.bones.bones[id].local == t {
		return
	}
	_ = b.bones.SetLocalTransform(id, t)
}

func (b *Binder) setVariant(id BoneID, name string) {
	if cur, ok := b.bones.SpriteVariant(id); ok && cur == name {
		return
	}
	if name == "" && len(b.bones.Variants(id)) == 0 {
		return
	}
	_ = b.bones.SetSpriteVariant(id, name)
}
