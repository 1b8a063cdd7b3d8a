package view

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/marionette"
)

// Rect is an axis-aligned rectangle in screen or world space.
type Rect struct {
	X, Y, Width, Height float64
}

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps rig world space onto the window.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	followBones *marionette.BoneSystem
	followBone  marionette.BoneID
	followLerp  float64

	viewMatrix    marionette.Matrix
	invViewMatrix marionette.Matrix
	dirty         bool

	scrollTween *scrollAnim
}

// NewCamera creates a Camera centered on the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// Follow makes the camera track a bone's world position. A lerp of 1.0
// snaps immediately; lower values give smoother following.
func (c *Camera) Follow(bones *marionette.BoneSystem, id marionette.BoneID, lerp float64) {
	c.followBones = bones
	c.followBone = id
	c.followLerp = lerp
}

// Unfollow stops tracking the current bone.
func (c *Camera) Unfollow() {
	c.followBones = nil
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is running.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// ZoomBy multiplies the zoom by factor, keeping it within [0.1, 10].
func (c *Camera) ZoomBy(factor float64) {
	c.Zoom = math.Max(0.1, math.Min(10, c.Zoom*factor))
	c.dirty = true
}

// Update advances follow and scroll animation by dt seconds.
func (c *Camera) Update(dt float32) {
	prevX, prevY := c.X, c.Y
	prevZoom, prevRot := c.Zoom, c.Rotation

	if c.followBones != nil {
		if w, err := c.followBones.WorldTransform(c.followBone); err == nil {
			c.X += (w.X - c.X) * c.followLerp
			c.Y += (w.Y - c.Y) * c.followLerp
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom || c.Rotation != prevRot {
		c.dirty = true
	}
}

// ViewMatrix returns the world-to-screen matrix:
//
//	Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
//
// where cx, cy is the viewport center.
func (c *Camera) ViewMatrix() marionette.Matrix {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2

	cos := math.Cos(-c.Rotation)
	sin := math.Sin(-c.Rotation)
	z := c.Zoom

	c.viewMatrix = marionette.Matrix{
		z * cos, z * sin,
		-z * sin, z * cos,
		cx + z*(-cos*c.X+sin*c.Y),
		cy + z*(-sin*c.X-cos*c.Y),
	}
	c.invViewMatrix = c.viewMatrix.Invert()
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.ViewMatrix().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.ViewMatrix()
	return c.invViewMatrix.Apply(sx, sy)
}

// MarkDirty forces a recomputation of the view matrix, e.g. after X or Y
// was set directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
