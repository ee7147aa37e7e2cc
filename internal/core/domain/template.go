package domain

import "fmt"

// SemanticType is the wire-visible value type of an attribute or parameter.
type SemanticType int

const (
	TypeInt32 SemanticType = iota
	TypeBool
	TypeDouble
)

func (t SemanticType) String() string {
	switch t {
	case TypeInt32:
		return "Int32"
	case TypeBool:
		return "Bool"
	case TypeDouble:
		return "Double"
	}
	return fmt.Sprintf("SemanticType(%d)", int(t))
}

// Default returns the zero value instances are seeded with.
func (t SemanticType) Default() any {
	switch t {
	case TypeInt32:
		return int32(0)
	case TypeBool:
		return false
	case TypeDouble:
		return float64(0)
	}
	return nil
}

// Accepts reports whether v is a valid value for this semantic type.
func (t SemanticType) Accepts(v any) bool {
	switch t {
	case TypeInt32:
		_, ok := v.(int32)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeDouble:
		_, ok := v.(float64)
		return ok
	}
	return false
}

// AttributeProps carries optional engineering metadata attached to a single
// attribute declaration.
type AttributeProps struct {
	Unit     string
	Min      float64
	Max      float64
	HasRange bool
}

type AttributeSpec struct {
	Name      string
	Type      SemanticType
	Mandatory bool
	Props     *AttributeProps
}

type ParamSpec struct {
	Name        string
	Type        SemanticType
	Description string
}

type OperationSpec struct {
	Name   string
	Input  []ParamSpec
	Output []ParamSpec
}

// DeviceTemplate is the immutable declared shape of a device: its attributes
// and operation signatures. One template stamps out N independent instances.
type DeviceTemplate struct {
	name       string
	attributes []AttributeSpec
	operations []OperationSpec
}

// NewDeviceTemplate validates attrs and ops and builds an immutable template.
func NewDeviceTemplate(name string, attrs []AttributeSpec, ops []OperationSpec) (*DeviceTemplate, error) {
	if name == "" {
		return nil, &SchemaError{Template: name, Reason: "empty template name"}
	}
	seenAttrs := map[string]bool{}
	for _, a := range attrs {
		if a.Name == "" {
			return nil, &SchemaError{Template: name, Reason: "empty attribute name"}
		}
		if seenAttrs[a.Name] {
			return nil, &SchemaError{Template: name, Reason: fmt.Sprintf("duplicate attribute %s", a.Name)}
		}
		if !knownType(a.Type) {
			return nil, &SchemaError{Template: name, Reason: fmt.Sprintf("attribute %s: unsupported type %s", a.Name, a.Type)}
		}
		seenAttrs[a.Name] = true
	}
	seenOps := map[string]bool{}
	for _, op := range ops {
		if op.Name == "" {
			return nil, &SchemaError{Template: name, Reason: "empty operation name"}
		}
		if seenOps[op.Name] {
			return nil, &SchemaError{Template: name, Reason: fmt.Sprintf("duplicate operation %s", op.Name)}
		}
		for _, p := range append(append([]ParamSpec{}, op.Input...), op.Output...) {
			if !knownType(p.Type) {
				return nil, &SchemaError{Template: name, Reason: fmt.Sprintf("operation %s: param %s: unsupported type %s", op.Name, p.Name, p.Type)}
			}
		}
		seenOps[op.Name] = true
	}
	return &DeviceTemplate{
		name:       name,
		attributes: copyAttrs(attrs),
		operations: copyOps(ops),
	}, nil
}

func (t *DeviceTemplate) Name() string {
	return t.name
}

// Attributes returns a copy of the declared attribute list, in declaration order.
func (t *DeviceTemplate) Attributes() []AttributeSpec {
	return copyAttrs(t.attributes)
}

// Operations returns a copy of the declared operation list, in declaration order.
func (t *DeviceTemplate) Operations() []OperationSpec {
	return copyOps(t.operations)
}

func (t *DeviceTemplate) attribute(name string) *AttributeSpec {
	for i := range t.attributes {
		if t.attributes[i].Name == name {
			return &t.attributes[i]
		}
	}
	return nil
}

func (t *DeviceTemplate) operation(name string) *OperationSpec {
	for i := range t.operations {
		if t.operations[i].Name == name {
			return &t.operations[i]
		}
	}
	return nil
}

func knownType(t SemanticType) bool {
	return t == TypeInt32 || t == TypeBool || t == TypeDouble
}

func copyAttrs(attrs []AttributeSpec) []AttributeSpec {
	out := make([]AttributeSpec, len(attrs))
	copy(out, attrs)
	for i := range out {
		if out[i].Props != nil {
			p := *out[i].Props
			out[i].Props = &p
		}
	}
	return out
}

func copyOps(ops []OperationSpec) []OperationSpec {
	out := make([]OperationSpec, len(ops))
	for i, op := range ops {
		out[i] = OperationSpec{
			Name:   op.Name,
			Input:  append([]ParamSpec{}, op.Input...),
			Output: append([]ParamSpec{}, op.Output...),
		}
	}
	return out
}
