package marionette

import (
	"fmt"
	"math"
	"testing"
)

// setupBenchBinder builds a chain rig of n bones with one continuous-scale
// effector per bone, all driven by a single linear signal.
func setupBenchBinder(b *testing.B, n int) *Binder {
	b.Helper()
	s := NewBoneSystem()
	parent := NoParent
	ids := make([]BoneID, n)
	for i := range n {
		id, err := s.AddBone(parent, fmt.Sprintf("bone%d", i), Translate(10, 0))
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = id
		// a shallow tree: every tenth bone starts a new branch from the root
		if i%10 == 9 {
			parent = ids[0]
		} else {
			parent = id
		}
	}
	if err := s.Finalize(); err != nil {
		b.Fatal(err)
	}

	samples := make([]Sample, 600)
	for i := range samples {
		samples[i] = Sample{Time: float64(i) / 60, Value: 0.5 + 0.5*math.Sin(float64(i)/10)}
	}
	sig, err := NewSignal("volume", samples, Range{Min: 0, Max: 1}, InterpolateLinear)
	if err != nil {
		b.Fatal(err)
	}

	bd := NewBinder(s)
	if err := bd.AddSignal(sig); err != nil {
		b.Fatal(err)
	}
	for i, id := range ids {
		eff, err := NewContinuousScale(fmt.Sprintf("e%d", i), ParamRef{Bone: id, Param: ParamRotation},
			ScaleConfig{Out: Range{Min: -0.2, Max: 0.2}})
		if err != nil {
			b.Fatal(err)
		}
		if err := bd.AddEffector(eff); err != nil {
			b.Fatal(err)
		}
		if _, err := bd.Connect("volume", eff.ID, 1); err != nil {
			b.Fatal(err)
		}
	}
	return bd
}

func BenchmarkEvaluate_100Bones(b *testing.B) {
	bd := setupBenchBinder(b, 100)
	if _, err := bd.Evaluate(0); err != nil { // warmup
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bd.Evaluate(float64(i+1) / 60); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate_1000Bones(b *testing.B) {
	bd := setupBenchBinder(b, 1000)
	if _, err := bd.Evaluate(0); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bd.Evaluate(float64(i+1) / 60); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComputeWorldTransforms_AllDirty(b *testing.B) {
	bd := setupBenchBinder(b, 1000)
	s := bd.Bones()
	root := s.Root()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		// moving the root dirties the whole tree
		if err := s.SetLocalTransform(root, Translate(float64(i%100), 0)); err != nil {
			b.Fatal(err)
		}
		s.ComputeWorldTransforms()
	}
}
