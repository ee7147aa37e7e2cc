package events

import (
	. "motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/service"
)

// SnapshotToUpdateEvents maps one motor snapshot to the attribute update
// events mirrored outward after a synchronization tick.
func SnapshotToUpdateEvents(snap service.MotorSnapshot) []any {
	var events []any

	// Actual speed
	events = append(events, IntAttributeUpdateEvent{
		AttributeUpdateEventMixIn: AttributeUpdateEventMixIn{
			Device:    snap.Name,
			Attribute: ATTR_ACTUAL_SPEED,
		},
		Value: snap.ActualSpeed,
	})
	// Running status
	events = append(events, BoolAttributeUpdateEvent{
		AttributeUpdateEventMixIn: AttributeUpdateEventMixIn{
			Device:    snap.Name,
			Attribute: ATTR_STATUS,
		},
		Value: snap.Running,
	})
	// Derived temperature
	events = append(events, FloatAttributeUpdateEvent{
		AttributeUpdateEventMixIn: AttributeUpdateEventMixIn{
			Device:    snap.Name,
			Attribute: ATTR_TEMPERATURE,
		},
		Value:    snap.Temperature,
		Decimals: 1,
	})

	return events
}

func BridgeStateEvent(online bool) BridgeStateUpdateEvent {
	return BridgeStateUpdateEvent{
		Value: online,
	}
}
