package domain

import (
	"fmt"
	"sync"
)

// OperationFunc is the callable bound to a declared operation. Args arrive in
// the order of the operation's declared input parameters.
type OperationFunc func(args ...any) error

// OperationBindings maps operation name to the behavior supplied by the caller.
type OperationBindings map[string]OperationFunc

// attributeCell is one independently-lockable storage slot. Per-attribute
// granularity: a reader never blocks on writes to other attributes.
type attributeCell struct {
	mu    sync.RWMutex
	spec  AttributeSpec
	value any
}

func (c *attributeCell) load() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *attributeCell) store(v any) error {
	if !c.spec.Type.Accepts(v) {
		return &InvalidArgumentError{Reason: fmt.Sprintf("attribute %s expects %s, got %T", c.spec.Name, c.spec.Type, v)}
	}
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	return nil
}

// DeviceInstance is one concrete device stamped from a template: independent
// attribute storage seeded from the declared shape, plus bound operation
// behavior. Instances never share state with each other.
type DeviceInstance struct {
	name     string
	template *DeviceTemplate
	cells    map[string]*attributeCell
	ops      map[string]OperationFunc
}

// Instantiate stamps a new instance from the template. Every declared
// operation must have a binding; seeds may override the per-type default of
// declared attributes.
func (t *DeviceTemplate) Instantiate(name string, bindings OperationBindings, seeds map[string]any) (*DeviceInstance, error) {
	inst := &DeviceInstance{
		name:     name,
		template: t,
		cells:    make(map[string]*attributeCell, len(t.attributes)),
		ops:      make(map[string]OperationFunc, len(t.operations)),
	}
	for _, spec := range t.attributes {
		inst.cells[spec.Name] = &attributeCell{spec: spec, value: spec.Type.Default()}
	}
	for seedName, v := range seeds {
		cell, ok := inst.cells[seedName]
		if !ok {
			return nil, &UnknownAttributeError{Instance: name, Attribute: seedName}
		}
		if !cell.spec.Type.Accepts(v) {
			return nil, &BindingError{Instance: name, Reason: fmt.Sprintf("seed for %s expects %s, got %T", seedName, cell.spec.Type, v)}
		}
		cell.value = v
	}
	for _, op := range t.operations {
		fn, ok := bindings[op.Name]
		if !ok || fn == nil {
			return nil, &BindingError{Instance: name, Operation: op.Name, Reason: "no implementation bound"}
		}
		inst.ops[op.Name] = fn
	}
	for boundName := range bindings {
		if t.operation(boundName) == nil {
			return nil, &BindingError{Instance: name, Operation: boundName, Reason: "operation not declared on template"}
		}
	}
	return inst, nil
}

func (i *DeviceInstance) Name() string {
	return i.name
}

func (i *DeviceInstance) Template() *DeviceTemplate {
	return i.template
}

func (i *DeviceInstance) Attribute(name string) (any, error) {
	cell, ok := i.cells[name]
	if !ok {
		return nil, &UnknownAttributeError{Instance: i.name, Attribute: name}
	}
	return cell.load(), nil
}

func (i *DeviceInstance) SetAttribute(name string, value any) error {
	cell, ok := i.cells[name]
	if !ok {
		return &UnknownAttributeError{Instance: i.name, Attribute: name}
	}
	return cell.store(value)
}

// Invoke calls the behavior bound to a declared operation.
func (i *DeviceInstance) Invoke(op string, args ...any) error {
	fn, ok := i.ops[op]
	if !ok {
		return &BindingError{Instance: i.name, Operation: op, Reason: "operation not bound"}
	}
	return fn(args...)
}
