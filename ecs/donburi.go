package ecs

import (
	"github.com/phanxgames/marionette"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameEventType is the Donburi event type for marionette frame summaries.
var FrameEventType = events.NewEventType[marionette.FrameEvent]()

type donburiObserver struct {
	world donburi.World
}

// NewDonburiObserver creates a FrameObserver backed by a Donburi world.
// Frames are published to FrameEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiObserver(world donburi.World) marionette.FrameObserver {
	return &donburiObserver{world: world}
}

func (o *donburiObserver) ObserveFrame(event marionette.FrameEvent) {
	FrameEventType.Publish(o.world, event)
}
