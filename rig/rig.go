// Package rig loads character rig descriptions from TOML and builds them
// into a marionette BoneSystem, an effector catalogue, and a default patch.
//
// A description lists bones in any order; each names its parent, and
// exactly one bone has no parent. Angles are written in degrees and
// converted to radians on build.
//
//	name = "dancer"
//
//	[[bone]]
//	name = "Root"
//	x = 400
//	y = 450
//
//	[[bone]]
//	name = "Head"
//	parent = "Root"
//	y = -200
//
//	[[effector]]
//	id = "head_bob"
//	kind = "pulse-trigger"
//	bone = "Head"
//	param = "y"
//	threshold = 0.5
//	amplitude = 20
//	duration = 0.15
//	ease = "ease_out"
//
//	[[binding]]
//	signal = "beats"
//	effector = "head_bob"
package rig

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/marionette"
)

//go:embed default_rig.toml
var defaultRig []byte

// Description is the parsed form of a rig file.
type Description struct {
	Name      string         `toml:"name"`
	Bones     []BoneSpec     `toml:"bone"`
	Effectors []EffectorSpec `toml:"effector"`
	Bindings  []BindingSpec  `toml:"binding"`
}

// BoneSpec declares one bone. Rotation is in degrees. Missing scale
// components default to 1.
type BoneSpec struct {
	Name     string   `toml:"name"`
	Parent   string   `toml:"parent"`
	X        float64  `toml:"x"`
	Y        float64  `toml:"y"`
	Rotation float64  `toml:"rotation"`
	ScaleX   *float64 `toml:"scale_x"`
	ScaleY   *float64 `toml:"scale_y"`

	// Variants is the sprite catalogue; the first entry is the rest variant
	// unless RestVariant names another.
	Variants    []string `toml:"variants"`
	RestVariant string   `toml:"rest_variant"`

	// Limits maps a parameter name to its [min, max] valid range. Rotation
	// limits are in degrees.
	Limits map[string][2]float64 `toml:"limits"`
}

// TapSpec routes a scaled copy of an effector's delta to another bone.
type TapSpec struct {
	Bone  string  `toml:"bone"`
	Param string  `toml:"param"`
	Gain  float64 `toml:"gain"`
}

// EffectorSpec declares one effector. Which fields apply depends on Kind:
// pulse-trigger reads Threshold, Amplitude, Duration, and Ease;
// continuous-scale reads Out; direction-select reads Variants and Deadband.
// Amplitude and Out are in degrees when Param is rotation.
type EffectorSpec struct {
	ID    string `toml:"id"`
	Kind  string `toml:"kind"`
	Bone  string `toml:"bone"`
	Param string `toml:"param"`

	Threshold float64 `toml:"threshold"`
	Amplitude float64 `toml:"amplitude"`
	Duration  float64 `toml:"duration"`
	Ease      string  `toml:"ease"`

	Out [2]float64 `toml:"out"`

	// Variants defaults to the target bone's catalogue.
	Variants []string `toml:"variants"`
	Deadband float64  `toml:"deadband"`

	Taps []TapSpec `toml:"tap"`
}

// SmoothingSpec configures per-binding smoothing.
type SmoothingSpec struct {
	Mode      string  `toml:"mode"`
	Alpha     float64 `toml:"alpha"`
	Frequency float64 `toml:"frequency"`
	Damping   float64 `toml:"damping"`
}

// BindingSpec is one entry of the default patch.
type BindingSpec struct {
	Signal    string         `toml:"signal"`
	Effector  string         `toml:"effector"`
	Weight    *float64       `toml:"weight"`
	Disabled  bool           `toml:"disabled"`
	Smoothing *SmoothingSpec `toml:"smoothing"`
	Normalize *[2]float64    `toml:"normalize"`
}

// Parse decodes a rig description. Unknown keys are rejected so typos in
// hand-written rigs surface early.
func Parse(data []byte) (*Description, error) {
	return decode(bytes.NewReader(data))
}

// Load reads and parses the rig file at path.
func Load(path string) (*Description, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rig: %w", err)
	}
	defer file.Close()

	d, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Default returns the built-in character rig.
func Default() *Description {
	d, err := Parse(defaultRig)
	if err != nil {
		panic(fmt.Sprintf("rig: embedded default rig is invalid: %v", err))
	}
	return d
}

// DefaultSource returns the TOML text of the built-in rig, for writing a
// starting point to disk.
func DefaultSource() string {
	return string(defaultRig)
}

func decode(r io.Reader) (*Description, error) {
	var d Description
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: parse rig: %w", marionette.ErrValidation, err)
	}
	return &d, nil
}
