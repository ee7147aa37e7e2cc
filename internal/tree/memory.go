package tree

import (
	"fmt"
	"sync"

	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/port"
)

type typeHandle struct {
	name string
}

func (h typeHandle) TypeName() string {
	return h.name
}

type instanceHandle struct {
	name string
}

func (h instanceHandle) InstanceName() string {
	return h.name
}

type attrDecl struct {
	name         string
	defaultValue any
	semType      domain.SemanticType
	mandatory    bool
}

type opDecl struct {
	name   string
	input  []domain.ParamSpec
	output []domain.ParamSpec
}

type registeredType struct {
	name  string
	attrs []attrDecl
	ops   []opDecl
}

func (t *registeredType) attr(name string) *attrDecl {
	for i := range t.attrs {
		if t.attrs[i].name == name {
			return &t.attrs[i]
		}
	}
	return nil
}

func (t *registeredType) op(name string) *opDecl {
	for i := range t.ops {
		if t.ops[i].name == name {
			return &t.ops[i]
		}
	}
	return nil
}

// cell is one live attribute slot. Locking is per cell, so writes to one
// attribute never block reads of another.
type cell struct {
	mu      sync.RWMutex
	semType domain.SemanticType
	value   any
}

type liveInstance struct {
	name     string
	parent   string
	typeName string
	cells    map[string]*cell

	opMu sync.RWMutex
	ops  map[string]domain.OperationFunc
}

// MemoryTree is an in-process implementation of the external address space: a
// registry of types and live instances whose attribute cells are written by
// the synchronizer and read by remote callers. It is also the test double for
// every component that drives the tree boundary.
type MemoryTree struct {
	mu        sync.RWMutex
	types     map[string]*registeredType
	instances map[string]*liveInstance
}

func NewMemoryTree() *MemoryTree {
	return &MemoryTree{
		types:     make(map[string]*registeredType),
		instances: make(map[string]*liveInstance),
	}
}

func (m *MemoryTree) RegisterType(name string) (port.TypeHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.types[name]; exists {
		return nil, &domain.DuplicateNameError{Name: name}
	}
	m.types[name] = &registeredType{name: name}
	return typeHandle{name: name}, nil
}

func (m *MemoryTree) AddAttribute(t port.TypeHandle, name string, defaultValue any, semType domain.SemanticType, mandatory bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, err := m.typeOf(t)
	if err != nil {
		return err
	}
	if rt.attr(name) != nil {
		return &domain.DuplicateNameError{Name: name}
	}
	if !semType.Accepts(defaultValue) {
		return &domain.SchemaError{Template: rt.name, Reason: fmt.Sprintf("attribute %s: default %T does not match %s", name, defaultValue, semType)}
	}
	rt.attrs = append(rt.attrs, attrDecl{
		name:         name,
		defaultValue: defaultValue,
		semType:      semType,
		mandatory:    mandatory,
	})
	return nil
}

func (m *MemoryTree) AddOperation(t port.TypeHandle, name string, input, output []domain.ParamSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, err := m.typeOf(t)
	if err != nil {
		return err
	}
	if rt.op(name) != nil {
		return &domain.DuplicateNameError{Name: name}
	}
	rt.ops = append(rt.ops, opDecl{
		name:   name,
		input:  append([]domain.ParamSpec{}, input...),
		output: append([]domain.ParamSpec{}, output...),
	})
	return nil
}

// InstantiateFromType produces a live object whose attribute and operation
// set mirrors the registered type, seeded with the declared defaults.
func (m *MemoryTree) InstantiateFromType(t port.TypeHandle, instanceName, parentContainer string) (port.InstanceHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, err := m.typeOf(t)
	if err != nil {
		return nil, err
	}
	if _, exists := m.instances[instanceName]; exists {
		return nil, &domain.DuplicateNameError{Name: instanceName}
	}
	inst := &liveInstance{
		name:     instanceName,
		parent:   parentContainer,
		typeName: rt.name,
		cells:    make(map[string]*cell, len(rt.attrs)),
		ops:      make(map[string]domain.OperationFunc, len(rt.ops)),
	}
	for _, a := range rt.attrs {
		inst.cells[a.name] = &cell{semType: a.semType, value: a.defaultValue}
	}
	m.instances[instanceName] = inst
	return instanceHandle{name: instanceName}, nil
}

func (m *MemoryTree) Instance(instanceName string) (port.InstanceHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.instances[instanceName]; !ok {
		return nil, &domain.UnknownDeviceError{Device: instanceName}
	}
	return instanceHandle{name: instanceName}, nil
}

func (m *MemoryTree) ReadAttribute(h port.InstanceHandle, attribute string) (any, error) {
	inst, err := m.instanceOf(h)
	if err != nil {
		return nil, err
	}
	c, ok := inst.cells[attribute]
	if !ok {
		return nil, &domain.UnknownAttributeError{Instance: inst.name, Attribute: attribute}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, nil
}

func (m *MemoryTree) WriteAttribute(h port.InstanceHandle, attribute string, value any) error {
	inst, err := m.instanceOf(h)
	if err != nil {
		return err
	}
	c, ok := inst.cells[attribute]
	if !ok {
		return &domain.UnknownAttributeError{Instance: inst.name, Attribute: attribute}
	}
	if !c.semType.Accepts(value) {
		return &domain.InvalidArgumentError{Reason: fmt.Sprintf("attribute %s expects %s, got %T", attribute, c.semType, value)}
	}
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
	return nil
}

func (m *MemoryTree) BindOperation(h port.InstanceHandle, operation string, callable domain.OperationFunc) error {
	inst, err := m.instanceOf(h)
	if err != nil {
		return err
	}
	m.mu.RLock()
	rt := m.types[inst.typeName]
	m.mu.RUnlock()
	if rt == nil || rt.op(operation) == nil {
		return &domain.BindingError{Instance: inst.name, Operation: operation, Reason: "operation not declared on type"}
	}
	if callable == nil {
		return &domain.BindingError{Instance: inst.name, Operation: operation, Reason: "nil callable"}
	}
	inst.opMu.Lock()
	inst.ops[operation] = callable
	inst.opMu.Unlock()
	return nil
}

func (m *MemoryTree) InvokeOperation(h port.InstanceHandle, operation string, args ...any) error {
	inst, err := m.instanceOf(h)
	if err != nil {
		return err
	}
	inst.opMu.RLock()
	callable, ok := inst.ops[operation]
	inst.opMu.RUnlock()
	if !ok {
		return &domain.BindingError{Instance: inst.name, Operation: operation, Reason: "operation not bound"}
	}
	return callable(args...)
}

func (m *MemoryTree) typeOf(t port.TypeHandle) (*registeredType, error) {
	if t == nil {
		return nil, &domain.InvalidArgumentError{Reason: "nil type handle"}
	}
	rt, ok := m.types[t.TypeName()]
	if !ok {
		return nil, &domain.InvalidArgumentError{Reason: fmt.Sprintf("unknown type %s", t.TypeName())}
	}
	return rt, nil
}

func (m *MemoryTree) instanceOf(h port.InstanceHandle) (*liveInstance, error) {
	if h == nil {
		return nil, &domain.InvalidArgumentError{Reason: "nil instance handle"}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[h.InstanceName()]
	if !ok {
		return nil, &domain.UnknownDeviceError{Device: h.InstanceName()}
	}
	return inst, nil
}

// ensure interface compliance
var _ port.AttributeTree = (*MemoryTree)(nil)
