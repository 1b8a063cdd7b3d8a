package marionette

import "math"

// Vec2 is a 2D vector used for positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose closed min/max range.
// Used for signal domains, effector output ranges, and parameter limits.
type Range struct {
	Min, Max float64
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies inside the range. Bounds are inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Normalize remaps v from the range onto [0, 1], clamping values outside it.
// A zero-width range maps everything to 0.
func (r Range) Normalize(v float64) float64 {
	w := r.Width()
	if w == 0 {
		return 0
	}
	n := (v - r.Min) / w
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// Lerp maps t in [0, 1] onto the range. t is not clamped.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// BoneID indexes a bone in a BoneSystem arena. IDs are dense, start at 0,
// and stay stable for the rig's lifetime.
type BoneID int32

// NoParent is the parent sentinel for the root bone.
const NoParent BoneID = -1

// Param identifies one writable bone parameter.
type Param uint8

const (
	ParamX        Param = iota // local translation X
	ParamY                     // local translation Y
	ParamRotation              // local rotation (radians)
	ParamScaleX                // local scale X
	ParamScaleY                // local scale Y
	ParamScale                 // uniform scale; writes both ScaleX and ScaleY
	ParamSprite                // active sprite variant (non-numeric)
)

var paramNames = [...]string{
	ParamX:        "x",
	ParamY:        "y",
	ParamRotation: "rotation",
	ParamScaleX:   "scale_x",
	ParamScaleY:   "scale_y",
	ParamScale:    "scale",
	ParamSprite:   "sprite",
}

func (p Param) String() string {
	if int(p) < len(paramNames) {
		return paramNames[p]
	}
	return "unknown"
}

// ParseParam converts a parameter name ("x", "y", "rotation", "scale_x",
// "scale_y", "scale", "sprite") to a Param.
func ParseParam(name string) (Param, bool) {
	for i, n := range paramNames {
		if n == name {
			return Param(i), true
		}
	}
	return 0, false
}

// numeric reports whether p carries a float value (everything but ParamSprite).
func (p Param) numeric() bool {
	return p != ParamSprite
}

// axes expands a Param into the concrete transform fields it writes.
func (p Param) axes() []Param {
	switch p {
	case ParamScale:
		return []Param{ParamScaleX, ParamScaleY}
	case ParamSprite:
		return nil
	default:
		return []Param{p}
	}
}

// ParamRef names one parameter of one bone.
type ParamRef struct {
	Bone  BoneID
	Param Param
}

// defaultLimits are the valid value ranges used when a bone has no explicit
// limit for a parameter.
var defaultLimits = [...]Range{
	ParamX:        {-4096, 4096},
	ParamY:        {-4096, 4096},
	ParamRotation: {-2 * math.Pi, 2 * math.Pi},
	ParamScaleX:   {0, 16},
	ParamScaleY:   {0, 16},
}

// DefaultLimit returns the built-in valid range for a concrete numeric
// parameter. ParamScale reports the ScaleX range.
func DefaultLimit(p Param) Range {
	if p == ParamScale {
		p = ParamScaleX
	}
	if int(p) < len(defaultLimits) {
		return defaultLimits[p]
	}
	return Range{math.Inf(-1), math.Inf(1)}
}
