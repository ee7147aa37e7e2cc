package domain

const (
	ACTOR_ID_MASTER   = "master"
	ACTOR_ID_MQTT     = "mqtt"
	ACTOR_ID_SYNC     = "sync"
	ACTOR_ID_COMMAND  = "command"
	ACTOR_ID_METADATA = "metadata"
)

// Externally-visible attribute names, as declared on the motor template.
const (
	ATTR_ACTUAL_SPEED = "ActualSpeed"
	ATTR_STATUS       = "Status"
	ATTR_TEMPERATURE  = "Temperature"
	ATTR_TARGET_SPEED = "TargetSpeed"

	OP_START = "Start"
	OP_STOP  = "Stop"
)

// StartMotorRequest commands one device to ramp toward Speed.
type StartMotorRequest struct {
	ActorRequestMixIn
	Device string
	Speed  int32
}

// StopMotorRequest commands one device to ramp down to zero.
type StopMotorRequest struct {
	ActorRequestMixIn
	Device string
}

// CommandResponse is the rejected-or-accepted result of a Start/Stop call.
type CommandResponse struct {
	ActorResponseMixIn
	Device string
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

// PublishAttributeUpdateRequest asks the MQTT adapter to mirror one attribute
// update event to its retained state topic.
type PublishAttributeUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  AttributeUpdateEvent
}

type PublishAttributeUpdateResponse struct {
	ActorResponseMixIn
}

// RefreshMetadata asks the metadata actor to re-publish the retained type and
// instance documents.
type RefreshMetadata struct {
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
