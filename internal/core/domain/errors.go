package domain

import "fmt"

// SchemaError reports an invalid template definition. Raised at startup,
// before any device is instantiated, so it is always fatal.
type SchemaError struct {
	Template string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("template %s: %s", e.Template, e.Reason)
}

// BindingError reports a mismatch between a template's declared operations
// and the behavior supplied at instantiation time.
type BindingError struct {
	Instance  string
	Operation string
	Reason    string
}

func (e *BindingError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("instance %s: operation %s: %s", e.Instance, e.Operation, e.Reason)
	}
	return fmt.Sprintf("instance %s: %s", e.Instance, e.Reason)
}

type UnknownAttributeError struct {
	Instance  string
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("instance %s: unknown attribute %s", e.Instance, e.Attribute)
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate name %s", e.Name)
}

type UnknownDeviceError struct {
	Device string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("unknown device %s", e.Device)
}

type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// SyncWriteError wraps a transient failure to push one attribute into the
// external tree. The synchronizer logs it and moves on to the next device.
type SyncWriteError struct {
	Device    string
	Attribute string
	Err       error
}

func (e *SyncWriteError) Error() string {
	return fmt.Sprintf("sync write %s/%s: %v", e.Device, e.Attribute, e.Err)
}

func (e *SyncWriteError) Unwrap() error {
	return e.Err
}
