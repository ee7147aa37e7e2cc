package port

import (
	"motorfleet2mqtt/internal/core/domain"
)

// TypeHandle refers to a type registered in the external tree.
type TypeHandle interface {
	TypeName() string
}

// InstanceHandle refers to a live object instantiated from a registered type.
type InstanceHandle interface {
	InstanceName() string
}

// AttributeTree is the externally-addressable object model the core drives.
// The core registers the device type once at startup, instantiates one live
// object per device, binds Start/Stop callables, and then only writes
// telemetry attributes at the synchronization period. WriteAttribute must be
// safe to call concurrently with reads; atomicity is per attribute.
type AttributeTree interface {
	RegisterType(name string) (TypeHandle, error)
	AddAttribute(t TypeHandle, name string, defaultValue any, semType domain.SemanticType, mandatory bool) error
	AddOperation(t TypeHandle, name string, input, output []domain.ParamSpec) error

	InstantiateFromType(t TypeHandle, instanceName, parentContainer string) (InstanceHandle, error)
	Instance(instanceName string) (InstanceHandle, error)

	ReadAttribute(h InstanceHandle, attribute string) (any, error)
	WriteAttribute(h InstanceHandle, attribute string, value any) error

	BindOperation(h InstanceHandle, operation string, callable domain.OperationFunc) error
	InvokeOperation(h InstanceHandle, operation string, args ...any) error
}
