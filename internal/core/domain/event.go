package domain

import "fmt"

type AttributeUpdateEventMixIn struct {
	Device    string
	Attribute string
}

// AttributeUpdateEvent is published on the event stream every time the
// synchronizer pushes a fresh value into the external tree.
type AttributeUpdateEvent interface {
	AttributeUpdateEvent() string
	DeviceId() string
	AttributeName() string
}

func (e AttributeUpdateEventMixIn) AttributeUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e AttributeUpdateEventMixIn) DeviceId() string {
	return e.Device
}

func (e AttributeUpdateEventMixIn) AttributeName() string {
	return e.Attribute
}

type IntAttributeUpdateEvent struct {
	AttributeUpdateEventMixIn
	Value int32
}

type BoolAttributeUpdateEvent struct {
	AttributeUpdateEventMixIn
	Value bool
}

type FloatAttributeUpdateEvent struct {
	AttributeUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BridgeStateUpdateEvent struct {
	AttributeUpdateEventMixIn
	Value bool
}
