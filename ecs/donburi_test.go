package ecs

import (
	"testing"

	"github.com/phanxgames/marionette"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiObserver(t *testing.T) {
	world := donburi.NewWorld()
	if NewDonburiObserver(world) == nil {
		t.Fatal("NewDonburiObserver returned nil")
	}
}

func TestDonburiObserver_ObserveFrame(t *testing.T) {
	world := donburi.NewWorld()
	obs := NewDonburiObserver(world)

	var received []marionette.FrameEvent
	FrameEventType.Subscribe(world, func(w donburi.World, e marionette.FrameEvent) {
		received = append(received, e)
	})

	obs.ObserveFrame(marionette.FrameEvent{Time: 0.5, Bindings: 2, Writes: 3})
	obs.ObserveFrame(marionette.FrameEvent{Time: 0, Reset: true})

	// Events are queued until processed.
	FrameEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if e := received[0]; e.Time != 0.5 || e.Bindings != 2 || e.Writes != 3 {
		t.Errorf("event 0: %+v", e)
	}
	if !received[1].Reset {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiObserver_FromBinder(t *testing.T) {
	world := donburi.NewWorld()

	bones := marionette.NewBoneSystem()
	root, err := bones.AddBone(marionette.NoParent, "Root", marionette.Identity())
	if err != nil {
		t.Fatal(err)
	}
	if err := bones.Finalize(); err != nil {
		t.Fatal(err)
	}
	sig, err := marionette.NewSignal("volume", []marionette.Sample{{Time: 0, Value: 0}, {Time: 1, Value: 1}},
		marionette.Range{Min: 0, Max: 1}, marionette.InterpolateLinear)
	if err != nil {
		t.Fatal(err)
	}
	eff, err := marionette.NewContinuousScale("sway",
		marionette.ParamRef{Bone: root, Param: marionette.ParamX},
		marionette.ScaleConfig{Out: marionette.Range{Min: 0, Max: 10}})
	if err != nil {
		t.Fatal(err)
	}

	b := marionette.NewBinder(bones, marionette.WithObserver(NewDonburiObserver(world)))
	if err := b.AddSignal(sig); err != nil {
		t.Fatal(err)
	}
	if err := b.AddEffector(eff); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Connect("volume", "sway", 1); err != nil {
		t.Fatal(err)
	}

	var times []float64
	FrameEventType.Subscribe(world, func(w donburi.World, e marionette.FrameEvent) {
		times = append(times, e.Time)
	})
	for _, tm := range []float64{0, 0.5, 1} {
		if _, err := b.Evaluate(tm); err != nil {
			t.Fatalf("Evaluate(%v): %v", tm, err)
		}
	}
	events.ProcessAllEvents(world)

	if len(times) != 3 || times[2] != 1 {
		t.Errorf("observed times %v, want [0 0.5 1]", times)
	}
}

func TestDonburiObserver_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	obs := NewDonburiObserver(world)

	var count1, count2 int
	FrameEventType.Subscribe(world, func(w donburi.World, e marionette.FrameEvent) {
		count1++
	})
	FrameEventType.Subscribe(world, func(w donburi.World, e marionette.FrameEvent) {
		count2++
	})

	obs.ObserveFrame(marionette.FrameEvent{Time: 1})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
