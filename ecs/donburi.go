package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/bramble"
)

// InteractionEventType is the Donburi event type for bramble interaction
// events: pointer, click, key, character, hover and focus changes.
var InteractionEventType = events.NewEventType[bramble.InteractionEvent]()

// DonburiStore is an EntityStore backed by a Donburi world.
type DonburiStore struct {
	world  donburi.World
	filter func(bramble.EventType) bool
}

// NewDonburiStore creates an EntityStore backed by world. Interaction events
// are published to InteractionEventType and consumed with events.Subscribe
// and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world}
}

// Only restricts publishing to the given event types. With no types every
// event is published.
func (s *DonburiStore) Only(types ...bramble.EventType) *DonburiStore {
	if len(types) == 0 {
		s.filter = nil
		return s
	}
	var mask uint32
	for _, t := range types {
		mask |= 1 << t
	}
	s.filter = func(t bramble.EventType) bool { return mask&(1<<t) != 0 }
	return s
}

// EmitEvent implements bramble.EntityStore.
func (s *DonburiStore) EmitEvent(event bramble.InteractionEvent) {
	if s.filter != nil && !s.filter(event.Type) {
		return
	}
	InteractionEventType.Publish(s.world, event)
}
