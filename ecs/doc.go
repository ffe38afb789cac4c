// Package ecs bridges bramble interaction events into an entity component
// system.
//
// [NewDonburiStore] returns a bramble.EntityStore that publishes every event
// delivered to a node declared with WithEntity into a [Donburi] world as a
// typed event. Subscribe to [InteractionEventType] in your ECS systems to
// receive them:
//
//	store := ecs.NewDonburiStore(world)
//	ui.SetEntityStore(store)
//	ecs.InteractionEventType.Subscribe(world, onInteraction)
//
// Events are queued; call events.ProcessAllEvents once per tick.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
