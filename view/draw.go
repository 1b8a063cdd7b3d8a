package view

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marionette"
)

// Joint is a bone origin in screen space.
type Joint struct {
	Bone      marionette.BoneID
	Name      string
	X, Y      float64
	Variant   string
	HasSprite bool
	// Catalogue reports whether the bone declares sprite variants at all.
	Catalogue bool
}

// Segment connects a parent joint to a child joint in screen space.
type Segment struct {
	Parent, Child  marionette.BoneID
	X0, Y0, X1, Y1 float64
}

// Layout projects every bone origin through view. World transforms must be
// up to date.
func Layout(bones *marionette.BoneSystem, view marionette.Matrix) ([]Joint, []Segment, error) {
	joints := make([]Joint, 0, bones.Len())
	segments := make([]Segment, 0, bones.Len())
	screen := make(map[marionette.BoneID][2]float64, bones.Len())

	var err error
	bones.Walk(func(id marionette.BoneID) bool {
		var m marionette.Matrix
		m, err = bones.WorldMatrix(id)
		if err != nil {
			return false
		}
		x, y := view.Mul(m).Apply(0, 0)
		screen[id] = [2]float64{x, y}

		variant, ok := bones.SpriteVariant(id)
		joints = append(joints, Joint{
			Bone:      id,
			Name:      bones.Name(id),
			X:         x,
			Y:         y,
			Variant:   variant,
			HasSprite: ok,
			Catalogue: len(bones.Variants(id)) > 0,
		})
		if parent := bones.Parent(id); parent != marionette.NoParent {
			p := screen[parent]
			segments = append(segments, Segment{
				Parent: parent, Child: id,
				X0: p[0], Y0: p[1], X1: x, Y1: y,
			})
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	return joints, segments, nil
}

// --- White pixel singleton (ebiten draws on one goroutine) ---

var whitePixelImage *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// quad returns the corners of a line of the given width from (x0, y0) to
// (x1, y1), in winding order. A zero-length line yields a width×width square.
func quad(x0, y0, x1, y1, width float64) [4][2]float64 {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	h := width / 2
	if length == 0 {
		return [4][2]float64{
			{x0 - h, y0 - h}, {x0 + h, y0 - h},
			{x0 + h, y0 + h}, {x0 - h, y0 + h},
		}
	}
	nx, ny := -dy/length*h, dx/length*h
	return [4][2]float64{
		{x0 + nx, y0 + ny}, {x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny}, {x0 - nx, y0 - ny},
	}
}

// maxBatchVerts keeps indices within uint16.
const maxBatchVerts = 65532

// canvas batches untextured quads into DrawTriangles calls.
type canvas struct {
	verts []ebiten.Vertex
	inds  []uint16
}

func (cv *canvas) add(q [4][2]float64, clr color.RGBA, dst *ebiten.Image) {
	if len(cv.verts)+4 > maxBatchVerts {
		cv.flush(dst)
	}
	base := uint16(len(cv.verts))
	r := float32(clr.R) / 255
	g := float32(clr.G) / 255
	b := float32(clr.B) / 255
	a := float32(clr.A) / 255
	for _, p := range q {
		cv.verts = append(cv.verts, ebiten.Vertex{
			DstX: float32(p[0]), DstY: float32(p[1]),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	cv.inds = append(cv.inds, base, base+1, base+2, base, base+2, base+3)
}

func (cv *canvas) flush(dst *ebiten.Image) {
	if len(cv.verts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	dst.DrawTriangles(cv.verts, cv.inds, ensureWhitePixel(), &op)
	cv.verts = cv.verts[:0]
	cv.inds = cv.inds[:0]
}

var (
	boneColor      = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	activeColor    = color.RGBA{R: 255, G: 170, B: 40, A: 255}
	jointColor     = color.RGBA{R: 90, G: 200, B: 255, A: 255}
	noSpriteColor  = color.RGBA{R: 255, G: 60, B: 90, A: 255}
	backgroundFill = color.RGBA{R: 24, G: 24, B: 32, A: 255}
)

// drawSkeleton draws segments, then joints on top. Bones in highlight are
// drawn in the active color.
func (cv *canvas) drawSkeleton(dst *ebiten.Image, joints []Joint, segments []Segment, highlight map[marionette.BoneID]bool) {
	for _, s := range segments {
		clr := boneColor
		if highlight[s.Child] {
			clr = activeColor
		}
		cv.add(quad(s.X0, s.Y0, s.X1, s.Y1, 3), clr, dst)
	}
	for _, j := range joints {
		clr := jointColor
		switch {
		case highlight[j.Bone]:
			clr = activeColor
		case j.Catalogue && !j.HasSprite:
			clr = noSpriteColor
		}
		cv.add(quad(j.X, j.Y, j.X, j.Y, 7), clr, dst)
	}
	cv.flush(dst)
}
