package marionette

// bone is one arena slot. Parent and children are stored as indices so the
// tree has no pointer cycles and traversal order is fully determined by
// insertion order.
type bone struct {
	name     string
	parent   BoneID
	children []BoneID

	// rest is the local transform given at construction. The Binder
	// rebuilds local from rest every frame so deltas never accumulate.
	rest  Transform
	local Transform

	// Computed, valid only while dirty is false.
	world       Transform
	worldMatrix Matrix
	dirty       bool

	variants      map[string]struct{}
	variantOrder  []string
	restVariant   string
	activeVariant string
	hasSprite     bool

	limits map[Param]Range
}

// BoneSystem is a flat arena of bones forming a single rooted tree. Bones are
// added once while the rig is built; after Finalize only local transforms
// and sprite variants change.
//
// BoneSystem is not safe for concurrent use. It is owned by whoever calls
// Binder.Evaluate.
type BoneSystem struct {
	bones     []bone
	byName    map[string]BoneID
	root      BoneID
	finalized bool

	// order is the depth-first pre-order (children in insertion order),
	// rebuilt lazily after AddBone.
	order      []BoneID
	orderDirty bool
}

// NewBoneSystem creates an empty bone system.
func NewBoneSystem() *BoneSystem {
	return &BoneSystem{
		byName: make(map[string]BoneID),
		root:   NoParent,
	}
}

// AddBone appends a bone under parent and returns its id. The root bone
// passes NoParent. Because a parent must already exist, the tree is acyclic
// by construction.
func (s *BoneSystem) AddBone(parent BoneID, name string, local Transform) (BoneID, error) {
	if s.finalized {
		return NoParent, statef("add bone %q: rig is finalized", name)
	}
	if name == "" {
		return NoParent, validationf("add bone: empty name")
	}
	if _, dup := s.byName[name]; dup {
		return NoParent, validationf("add bone %q: duplicate name", name)
	}
	if parent == NoParent {
		if s.root != NoParent {
			return NoParent, validationf("add bone %q: rig already has root %q", name, s.bones[s.root].name)
		}
	} else if !s.valid(parent) {
		return NoParent, validationf("add bone %q: unknown parent %d", name, parent)
	}

	id := BoneID(len(s.bones))
	s.bones = append(s.bones, bone{
		name:   name,
		parent: parent,
		rest:   local,
		local:  local,
		dirty:  true,
	})
	s.byName[name] = id
	if parent == NoParent {
		s.root = id
	} else {
		s.bones[parent].children = append(s.bones[parent].children, id)
	}
	s.orderDirty = true
	return id, nil
}

// Finalize locks the hierarchy. It fails unless exactly one root exists.
func (s *BoneSystem) Finalize() error {
	if s.root == NoParent {
		return validationf("finalize: rig has no root bone")
	}
	s.rebuildOrder()
	s.finalized = true
	return nil
}

// Finalized reports whether Finalize has run.
func (s *BoneSystem) Finalized() bool {
	return s.finalized
}

// SetLocalTransform replaces a bone's local transform and marks the bone and
// its whole subtree dirty.
func (s *BoneSystem) SetLocalTransform(id BoneID, t Transform) error {
	if !s.valid(id) {
		return validationf("set local transform: unknown bone %d", id)
	}
	s.bones[id].local = t
	s.markSubtreeDirty(id)
	return nil
}

// ComputeWorldTransforms recomputes world = parentWorld ∘ local for every
// dirty bone, root to leaf, and clears the dirty flags. Each bone is visited
// at most once. Returns the number of bones recomputed.
func (s *BoneSystem) ComputeWorldTransforms() int {
	if s.orderDirty {
		s.rebuildOrder()
	}
	n := 0
	for _, id := range s.order {
		b := &s.bones[id]
		if !b.dirty {
			continue
		}
		local := b.local.Matrix()
		if b.parent == NoParent {
			b.worldMatrix = local
		} else {
			b.worldMatrix = s.bones[b.parent].worldMatrix.Mul(local)
		}
		b.world = b.worldMatrix.Decompose()
		b.dirty = false
		n++
	}
	return n
}

// WorldTransform returns the bone's cached world transform. It fails with
// ErrState if the bone changed since the last ComputeWorldTransforms.
func (s *BoneSystem) WorldTransform(id BoneID) (Transform, error) {
	if !s.valid(id) {
		return Transform{}, validationf("world transform: unknown bone %d", id)
	}
	b := &s.bones[id]
	if b.dirty {
		return Transform{}, statef("world transform: bone %q is dirty", b.name)
	}
	return b.world, nil
}

// WorldMatrix returns the exact cached world matrix. Same validity rules as
// WorldTransform.
func (s *BoneSystem) WorldMatrix(id BoneID) (Matrix, error) {
	if !s.valid(id) {
		return Matrix{}, validationf("world matrix: unknown bone %d", id)
	}
	b := &s.bones[id]
	if b.dirty {
		return Matrix{}, statef("world matrix: bone %q is dirty", b.name)
	}
	return b.worldMatrix, nil
}

// IsDirty reports whether the bone's world transform is stale. Unknown ids
// report false.
func (s *BoneSystem) IsDirty(id BoneID) bool {
	return s.valid(id) && s.bones[id].dirty
}

// LocalTransform returns the bone's current local transform.
func (s *BoneSystem) LocalTransform(id BoneID) (Transform, error) {
	if !s.valid(id) {
		return Transform{}, validationf("local transform: unknown bone %d", id)
	}
	return s.bones[id].local, nil
}

// RestTransform returns the local transform the bone was created with.
func (s *BoneSystem) RestTransform(id BoneID) (Transform, error) {
	if !s.valid(id) {
		return Transform{}, validationf("rest transform: unknown bone %d", id)
	}
	return s.bones[id].rest, nil
}

// --- Sprite variants ---

// SetVariants declares the sprite variant catalogue of a bone. The first
// name becomes the rest variant and is activated immediately.
func (s *BoneSystem) SetVariants(id BoneID, names ...string) error {
	if !s.valid(id) {
		return validationf("set variants: unknown bone %d", id)
	}
	b := &s.bones[id]
	b.variants = make(map[string]struct{}, len(names))
	b.variantOrder = b.variantOrder[:0]
	for _, n := range names {
		if _, ok := b.variants[n]; ok {
			continue
		}
		b.variants[n] = struct{}{}
		b.variantOrder = append(b.variantOrder, n)
	}
	b.restVariant = ""
	b.activeVariant = ""
	b.hasSprite = false
	if len(b.variantOrder) > 0 {
		b.restVariant = b.variantOrder[0]
		b.activeVariant = b.restVariant
		b.hasSprite = true
	}
	return nil
}

// SetRestVariant changes which catalogue entry the bone returns to when no
// effector selects one.
func (s *BoneSystem) SetRestVariant(id BoneID, name string) error {
	if !s.valid(id) {
		return validationf("set rest variant: unknown bone %d", id)
	}
	b := &s.bones[id]
	if _, ok := b.variants[name]; !ok {
		return validationf("set rest variant: bone %q has no variant %q", b.name, name)
	}
	b.restVariant = name
	return nil
}

// SetSpriteVariant activates a variant by name. A name missing from the
// catalogue is not an error: catalogues are filled externally and may be
// incomplete, so the bone is marked as having no active sprite instead.
func (s *BoneSystem) SetSpriteVariant(id BoneID, name string) error {
	if !s.valid(id) {
		return validationf("set sprite variant: unknown bone %d", id)
	}
	b := &s.bones[id]
	if _, ok := b.variants[name]; ok {
		b.activeVariant = name
		b.hasSprite = true
		return nil
	}
	b.activeVariant = ""
	b.hasSprite = false
	return nil
}

// SpriteVariant returns the active variant name and whether the bone has an
// active sprite at all.
func (s *BoneSystem) SpriteVariant(id BoneID) (string, bool) {
	if !s.valid(id) {
		return "", false
	}
	b := &s.bones[id]
	return b.activeVariant, b.hasSprite
}

// Variants returns the bone's variant catalogue in declaration order. The
// returned slice MUST NOT be mutated by the caller.
func (s *BoneSystem) Variants(id BoneID) []string {
	if !s.valid(id) {
		return nil
	}
	return s.bones[id].variantOrder
}

// restVariantOf returns the rest variant, used by the Binder to revert bones
// that no effector writes this frame.
func (s *BoneSystem) restVariantOf(id BoneID) string {
	return s.bones[id].restVariant
}

// --- Parameter limits ---

// SetLimit sets the valid value range of a numeric parameter on a bone.
// ParamScale sets both scale axes.
func (s *BoneSystem) SetLimit(id BoneID, p Param, r Range) error {
	if !s.valid(id) {
		return validationf("set limit: unknown bone %d", id)
	}
	if !p.numeric() {
		return validationf("set limit: parameter %s is not numeric", p)
	}
	if r.Min > r.Max {
		return validationf("set limit: min %g > max %g", r.Min, r.Max)
	}
	b := &s.bones[id]
	if b.limits == nil {
		b.limits = make(map[Param]Range, 2)
	}
	for _, axis := range p.axes() {
		b.limits[axis] = r
	}
	return nil
}

// Limit returns the valid range of a parameter, falling back to
// DefaultLimit.
func (s *BoneSystem) Limit(id BoneID, p Param) Range {
	if s.valid(id) {
		if p == ParamScale {
			p = ParamScaleX
		}
		if r, ok := s.bones[id].limits[p]; ok {
			return r
		}
	}
	return DefaultLimit(p)
}

// --- Lookup & traversal ---

// Lookup returns the id of the bone with the given name.
func (s *BoneSystem) Lookup(name string) (BoneID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Name returns the bone's name, or "" for an unknown id.
func (s *BoneSystem) Name(id BoneID) string {
	if !s.valid(id) {
		return ""
	}
	return s.bones[id].name
}

// Parent returns the bone's parent, NoParent for the root or unknown ids.
func (s *BoneSystem) Parent(id BoneID) BoneID {
	if !s.valid(id) {
		return NoParent
	}
	return s.bones[id].parent
}

// Children returns the child list in insertion order. The returned slice
// MUST NOT be mutated by the caller.
func (s *BoneSystem) Children(id BoneID) []BoneID {
	if !s.valid(id) {
		return nil
	}
	return s.bones[id].children
}

// Root returns the root bone id, NoParent if none was added yet.
func (s *BoneSystem) Root() BoneID {
	return s.root
}

// Len returns the number of bones.
func (s *BoneSystem) Len() int {
	return len(s.bones)
}

// Walk visits every bone in depth-first pre-order with children in
// insertion order. Returning false from fn stops the walk.
func (s *BoneSystem) Walk(fn func(id BoneID) bool) {
	if s.orderDirty {
		s.rebuildOrder()
	}
	for _, id := range s.order {
		if !fn(id) {
			return
		}
	}
}

// --- Helpers ---

func (s *BoneSystem) valid(id BoneID) bool {
	return id >= 0 && int(id) < len(s.bones)
}

// markSubtreeDirty sets dirty on id and all its descendants. Already-dirty
// subtrees are skipped: dirtiness always covers whole subtrees.
func (s *BoneSystem) markSubtreeDirty(id BoneID) {
	b := &s.bones[id]
	if b.dirty {
		return
	}
	b.dirty = true
	for _, child := range b.children {
		s.markSubtreeDirty(child)
	}
}

func (s *BoneSystem) rebuildOrder() {
	s.order = s.order[:0]
	if s.root != NoParent {
		s.order = s.appendPreOrder(s.order, s.root)
	}
	s.orderDirty = false
}

func (s *BoneSystem) appendPreOrder(dst []BoneID, id BoneID) []BoneID {
	dst = append(dst, id)
	for _, child := range s.bones[id].children {
		dst = s.appendPreOrder(dst, child)
	}
	return dst
}
