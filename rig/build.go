package rig

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/phanxgames/marionette"
)

const degToRad = math.Pi / 180

// Rig is a built description: a finalized bone system, its effectors, and
// the default patch. Effectors are stateful, so a Rig should be attached to
// a single Binder.
type Rig struct {
	Name      string
	Bones     *marionette.BoneSystem
	Effectors []*marionette.Effector
	Bindings  []BindingSpec
}

// Build validates the description and constructs the rig. Every failure is
// fatal and wraps marionette.ErrValidation: duplicate or unnamed bones, an
// unknown parent, zero or several roots, a parent cycle, bad limits, and
// effectors or bindings that reference unknown names.
func Build(d *Description) (*Rig, error) {
	bones, err := d.BuildBones()
	if err != nil {
		return nil, err
	}
	effectors, err := d.BuildEffectors(bones)
	if err != nil {
		return nil, err
	}
	if err := d.checkBindings(); err != nil {
		return nil, err
	}
	return &Rig{
		Name:      d.Name,
		Bones:     bones,
		Effectors: effectors,
		Bindings:  append([]BindingSpec(nil), d.Bindings...),
	}, nil
}

// BuildBones creates and finalizes the bone system. Bones are added
// breadth-first from the root, siblings in declaration order, so a parent
// always exists before its children regardless of file order.
func (d *Description) BuildBones() (*marionette.BoneSystem, error) {
	order, err := d.order()
	if err != nil {
		return nil, err
	}

	s := marionette.NewBoneSystem()
	ids := make(map[string]marionette.BoneID, len(d.Bones))
	for _, i := range order {
		spec := d.Bones[i]
		parent := marionette.NoParent
		if spec.Parent != "" {
			parent = ids[spec.Parent]
		}
		id, err := s.AddBone(parent, spec.Name, spec.local())
		if err != nil {
			return nil, fmt.Errorf("rig: %w", err)
		}
		ids[spec.Name] = id

		if len(spec.Variants) > 0 {
			if err := s.SetVariants(id, spec.Variants...); err != nil {
				return nil, fmt.Errorf("rig: %w", err)
			}
			if spec.RestVariant != "" {
				if err := s.SetRestVariant(id, spec.RestVariant); err != nil {
					return nil, fmt.Errorf("rig: %w", err)
				}
				if err := s.SetSpriteVariant(id, spec.RestVariant); err != nil {
					return nil, fmt.Errorf("rig: %w", err)
				}
			}
		} else if spec.RestVariant != "" {
			return nil, invalidf("bone %q: rest variant %q without variants", spec.Name, spec.RestVariant)
		}

		_, both := spec.Limits[marionette.ParamScale.String()]
		for _, name := range slices.Sorted(maps.Keys(spec.Limits)) {
			lim := spec.Limits[name]
			p, ok := marionette.ParseParam(name)
			if !ok {
				return nil, invalidf("bone %q: unknown limit parameter %q", spec.Name, name)
			}
			if both && (p == marionette.ParamScaleX || p == marionette.ParamScaleY) {
				return nil, invalidf("bone %q: limit %q overlaps %q", spec.Name, name, marionette.ParamScale)
			}
			r := marionette.Range{Min: lim[0], Max: lim[1]}
			if p == marionette.ParamRotation {
				r = marionette.Range{Min: lim[0] * degToRad, Max: lim[1] * degToRad}
			}
			if err := s.SetLimit(id, p, r); err != nil {
				return nil, fmt.Errorf("rig: bone %q: %w", spec.Name, err)
			}
		}
	}

	if err := s.Finalize(); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	s.ComputeWorldTransforms()
	return s, nil
}

// order returns bone indices in breadth-first order from the single root.
func (d *Description) order() ([]int, error) {
	if len(d.Bones) == 0 {
		return nil, invalidf("no bones")
	}
	index := make(map[string]int, len(d.Bones))
	for i, b := range d.Bones {
		if b.Name == "" {
			return nil, invalidf("bone %d has no name", i)
		}
		if _, dup := index[b.Name]; dup {
			return nil, invalidf("duplicate bone %q", b.Name)
		}
		index[b.Name] = i
	}

	root := -1
	children := make(map[string][]int, len(d.Bones))
	for i, b := range d.Bones {
		if b.Parent == "" {
			if root >= 0 {
				return nil, invalidf("bones %q and %q both have no parent", d.Bones[root].Name, b.Name)
			}
			root = i
			continue
		}
		if _, ok := index[b.Parent]; !ok {
			return nil, invalidf("bone %q: unknown parent %q", b.Name, b.Parent)
		}
		children[b.Parent] = append(children[b.Parent], i)
	}
	if root < 0 {
		return nil, invalidf("no root bone: parent cycle through %q", d.Bones[0].Name)
	}

	order := make([]int, 0, len(d.Bones))
	queue := []int{root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		queue = append(queue, children[d.Bones[i].Name]...)
	}
	if len(order) < len(d.Bones) {
		reached := make([]bool, len(d.Bones))
		for _, i := range order {
			reached[i] = true
		}
		for i, ok := range reached {
			if !ok {
				return nil, invalidf("bone %q: parent cycle", d.Bones[i].Name)
			}
		}
	}
	return order, nil
}

func (b BoneSpec) local() marionette.Transform {
	t := marionette.Transform{
		X:        b.X,
		Y:        b.Y,
		Rotation: b.Rotation * degToRad,
		ScaleX:   1,
		ScaleY:   1,
	}
	if b.ScaleX != nil {
		t.ScaleX = *b.ScaleX
	}
	if b.ScaleY != nil {
		t.ScaleY = *b.ScaleY
	}
	return t
}

// BuildEffectors constructs the effector catalogue against bones.
func (d *Description) BuildEffectors(bones *marionette.BoneSystem) ([]*marionette.Effector, error) {
	seen := make(map[string]struct{}, len(d.Effectors))
	out := make([]*marionette.Effector, 0, len(d.Effectors))
	for _, spec := range d.Effectors {
		if _, dup := seen[spec.ID]; dup {
			return nil, invalidf("duplicate effector %q", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		e, err := spec.build(bones)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (spec EffectorSpec) build(bones *marionette.BoneSystem) (*marionette.Effector, error) {
	kind, ok := marionette.ParseEffectorKind(spec.Kind)
	if !ok {
		return nil, invalidf("effector %q: unknown kind %q", spec.ID, spec.Kind)
	}
	bone, ok := bones.Lookup(spec.Bone)
	if !ok {
		return nil, invalidf("effector %q: unknown bone %q", spec.ID, spec.Bone)
	}

	if kind == marionette.KindDirectionSelect {
		variants := spec.Variants
		if len(variants) == 0 {
			variants = bones.Variants(bone)
		}
		e, err := marionette.NewDirectionSelect(spec.ID, bone, marionette.DirectionConfig{
			Variants: variants,
			Deadband: spec.Deadband,
		})
		if err != nil {
			return nil, fmt.Errorf("rig: %w", err)
		}
		return e, nil
	}

	param, ok := marionette.ParseParam(spec.Param)
	if !ok {
		return nil, invalidf("effector %q: unknown parameter %q", spec.ID, spec.Param)
	}
	target := marionette.ParamRef{Bone: bone, Param: param}
	taps, err := spec.taps(bones)
	if err != nil {
		return nil, err
	}
	unit := 1.0
	if param == marionette.ParamRotation {
		unit = degToRad
	}

	var e *marionette.Effector
	switch kind {
	case marionette.KindPulseTrigger:
		cfg := marionette.PulseConfig{
			Threshold: spec.Threshold,
			Amplitude: spec.Amplitude * unit,
			Duration:  spec.Duration,
			Taps:      taps,
		}
		if spec.Ease != "" && spec.Ease != "linear" {
			fn, ok := marionette.EasingByName(spec.Ease)
			if !ok {
				return nil, invalidf("effector %q: unknown ease %q", spec.ID, spec.Ease)
			}
			cfg.Ease = fn
		}
		e, err = marionette.NewPulseTrigger(spec.ID, target, cfg)
	case marionette.KindContinuousScale:
		e, err = marionette.NewContinuousScale(spec.ID, target, marionette.ScaleConfig{
			Out:  marionette.Range{Min: spec.Out[0] * unit, Max: spec.Out[1] * unit},
			Taps: taps,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	return e, nil
}

func (spec EffectorSpec) taps(bones *marionette.BoneSystem) ([]marionette.Tap, error) {
	if len(spec.Taps) == 0 {
		return nil, nil
	}
	taps := make([]marionette.Tap, 0, len(spec.Taps))
	for _, t := range spec.Taps {
		bone, ok := bones.Lookup(t.Bone)
		if !ok {
			return nil, invalidf("effector %q: tap on unknown bone %q", spec.ID, t.Bone)
		}
		p, ok := marionette.ParseParam(t.Param)
		if !ok {
			return nil, invalidf("effector %q: tap on unknown parameter %q", spec.ID, t.Param)
		}
		taps = append(taps, marionette.Tap{
			Target: marionette.ParamRef{Bone: bone, Param: p},
			Gain:   t.Gain,
		})
	}
	return taps, nil
}

func (d *Description) checkBindings() error {
	effectors := make(map[string]struct{}, len(d.Effectors))
	for _, e := range d.Effectors {
		effectors[e.ID] = struct{}{}
	}
	for i, b := range d.Bindings {
		if b.Signal == "" {
			return invalidf("binding %d has no signal", i)
		}
		if _, ok := effectors[b.Effector]; !ok {
			return invalidf("binding %d: unknown effector %q", i, b.Effector)
		}
		if _, err := b.options(); err != nil {
			return fmt.Errorf("rig: binding %s -> %s: %w", b.Signal, b.Effector, err)
		}
	}
	return nil
}

// weight defaults to 1.
func (b BindingSpec) weight() float64 {
	if b.Weight == nil {
		return 1
	}
	return *b.Weight
}

func (b BindingSpec) options() ([]marionette.BindingOption, error) {
	var opts []marionette.BindingOption
	if b.Smoothing != nil {
		mode, ok := marionette.ParseSmoothMode(b.Smoothing.Mode)
		if !ok {
			return nil, fmt.Errorf("%w: unknown smoothing mode %q", marionette.ErrValidation, b.Smoothing.Mode)
		}
		sm := marionette.Smoothing{
			Mode:      mode,
			Alpha:     b.Smoothing.Alpha,
			Frequency: b.Smoothing.Frequency,
			Damping:   b.Smoothing.Damping,
		}
		if err := sm.Validate(); err != nil {
			return nil, err
		}
		opts = append(opts, marionette.WithSmoothing(sm))
	}
	if b.Normalize != nil {
		r := marionette.Range{Min: b.Normalize[0], Max: b.Normalize[1]}
		if r.Min > r.Max {
			return nil, fmt.Errorf("%w: normalize range [%g, %g] is inverted", marionette.ErrValidation, r.Min, r.Max)
		}
		opts = append(opts, marionette.WithNormalizeRange(r))
	}
	return opts, nil
}

// Patch reports what Attach connected.
type Patch struct {
	Connected []marionette.BindingID
	// Skipped are default bindings whose signal is not registered on the
	// Binder, e.g. a feature missing from the analysis file.
	Skipped []BindingSpec
}

// Attach registers the rig's effectors on b and connects the default patch.
// Bindings marked disabled are connected and then disabled so they can be
// toggled on later. The Binder must have been created over r.Bones.
func (r *Rig) Attach(b *marionette.Binder) (Patch, error) {
	var p Patch
	if b.Bones() != r.Bones {
		return p, invalidf("attach: binder drives a different bone system")
	}
	for _, e := range r.Effectors {
		if err := b.AddEffector(e); err != nil {
			return p, fmt.Errorf("rig: %w", err)
		}
	}
	for _, spec := range r.Bindings {
		if _, ok := b.Signal(spec.Signal); !ok {
			p.Skipped = append(p.Skipped, spec)
			continue
		}
		opts, err := spec.options()
		if err != nil {
			return p, fmt.Errorf("rig: %w", err)
		}
		id, err := b.Connect(spec.Signal, spec.Effector, spec.weight(), opts...)
		if err != nil {
			return p, fmt.Errorf("rig: %w", err)
		}
		if spec.Disabled {
			if err := b.Disable(id); err != nil {
				return p, fmt.Errorf("rig: %w", err)
			}
		}
		p.Connected = append(p.Connected, id)
	}
	return p, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: rig: %s", marionette.ErrValidation, fmt.Sprintf(format, args...))
}
