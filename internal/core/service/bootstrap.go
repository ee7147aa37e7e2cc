package service

import (
	"motorfleet2mqtt/internal/core/port"
)

// RegisterFleet mirrors the fleet into the external tree: the type is
// registered once with its full declared shape, then every device gets a live
// instance under parentContainer with Start/Stop bound to its controller.
// Any error here means a partially-defined model and is fatal to startup.
func RegisterFleet(tree port.AttributeTree, fleet *Fleet, parentContainer string) (map[string]port.InstanceHandle, error) {
	template := fleet.Template()

	typeHandle, err := tree.RegisterType(template.Name())
	if err != nil {
		return nil, err
	}
	for _, attr := range template.Attributes() {
		if err := tree.AddAttribute(typeHandle, attr.Name, attr.Type.Default(), attr.Type, attr.Mandatory); err != nil {
			return nil, err
		}
	}
	for _, op := range template.Operations() {
		if err := tree.AddOperation(typeHandle, op.Name, op.Input, op.Output); err != nil {
			return nil, err
		}
	}

	handles := make(map[string]port.InstanceHandle, len(fleet.Devices()))
	for _, dev := range fleet.Devices() {
		instance := dev.Instance
		handle, err := tree.InstantiateFromType(typeHandle, instance.Name(), parentContainer)
		if err != nil {
			return nil, err
		}
		for _, op := range template.Operations() {
			opName := op.Name
			err := tree.BindOperation(handle, opName, func(args ...any) error {
				return instance.Invoke(opName, args...)
			})
			if err != nil {
				return nil, err
			}
		}
		handles[instance.Name()] = handle
	}
	return handles, nil
}
