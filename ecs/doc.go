// Package ecs provides ECS adapters for marionette's frame reports.
//
// The primary adapter is [NewDonburiObserver], which publishes a summary of
// every evaluated frame into a [Donburi] world as a typed event. Subscribe
// to [FrameEventType] in your ECS systems to react to frames, e.g. to spawn
// effects when a transport reset happens.
//
// Usage:
//
//	observer := ecs.NewDonburiObserver(world)
//	binder := marionette.NewBinder(bones, marionette.WithObserver(observer))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
