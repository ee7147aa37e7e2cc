package tree

import (
	"testing"

	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/port"

	"github.com/stretchr/testify/assert"
)

func registerMotorType(t *testing.T, m *MemoryTree) port.TypeHandle {
	t.Helper()
	th, err := m.RegisterType("MotorType")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddAttribute(th, "ActualSpeed", int32(0), domain.TypeInt32, true); err != nil {
		t.Fatal(err)
	}
	if err := m.AddAttribute(th, "Status", false, domain.TypeBool, true); err != nil {
		t.Fatal(err)
	}
	if err := m.AddAttribute(th, "Temperature", float64(0), domain.TypeDouble, true); err != nil {
		t.Fatal(err)
	}
	if err := m.AddOperation(th, "Start", []domain.ParamSpec{{Name: "TargetSpeed", Type: domain.TypeInt32}}, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.AddOperation(th, "Stop", nil, nil); err != nil {
		t.Fatal(err)
	}
	return th
}

func TestRegisterTypeDuplicate(t *testing.T) {

	assert := assert.New(t)

	m := NewMemoryTree()
	registerMotorType(t, m)

	_, err := m.RegisterType("MotorType")
	var dup *domain.DuplicateNameError
	assert.ErrorAs(err, &dup)
}

func TestAddAttributeValidation(t *testing.T) {

	assert := assert.New(t)

	m := NewMemoryTree()
	th := registerMotorType(t, m)

	var dup *domain.DuplicateNameError
	assert.ErrorAs(m.AddAttribute(th, "ActualSpeed", int32(0), domain.TypeInt32, true), &dup)

	var schemaErr *domain.SchemaError
	assert.ErrorAs(m.AddAttribute(th, "Broken", "zero", domain.TypeInt32, false), &schemaErr)
}

func TestInstantiateFromType(t *testing.T) {

	assert := assert.New(t)

	m := NewMemoryTree()
	th := registerMotorType(t, m)

	ih, err := m.InstantiateFromType(th, "Motor0", "fleet")
	assert.NoError(err)
	assert.Equal("Motor0", ih.InstanceName())

	// defaults visible through the read path
	speed, err := m.ReadAttribute(ih, "ActualSpeed")
	assert.NoError(err)
	assert.Equal(int32(0), speed)

	_, err = m.InstantiateFromType(th, "Motor0", "fleet")
	var dup *domain.DuplicateNameError
	assert.ErrorAs(err, &dup)

	resolved, err := m.Instance("Motor0")
	assert.NoError(err)
	assert.Equal("Motor0", resolved.InstanceName())

	_, err = m.Instance("Motor9")
	var unknownDevice *domain.UnknownDeviceError
	assert.ErrorAs(err, &unknownDevice)
}

func TestReadWriteAttribute(t *testing.T) {

	assert := assert.New(t)

	m := NewMemoryTree()
	th := registerMotorType(t, m)
	ih, _ := m.InstantiateFromType(th, "Motor0", "fleet")

	assert.NoError(m.WriteAttribute(ih, "ActualSpeed", int32(42)))
	assert.NoError(m.WriteAttribute(ih, "Status", true))
	assert.NoError(m.WriteAttribute(ih, "Temperature", 23.7))

	speed, err := m.ReadAttribute(ih, "ActualSpeed")
	assert.NoError(err)
	assert.Equal(int32(42), speed)

	var invalidArg *domain.InvalidArgumentError
	assert.ErrorAs(m.WriteAttribute(ih, "ActualSpeed", "fast"), &invalidArg)

	var unknownAttr *domain.UnknownAttributeError
	assert.ErrorAs(m.WriteAttribute(ih, "Nope", int32(1)), &unknownAttr)
	_, err = m.ReadAttribute(ih, "Nope")
	assert.ErrorAs(err, &unknownAttr)
}

func TestBindAndInvokeOperation(t *testing.T) {

	assert := assert.New(t)

	m := NewMemoryTree()
	th := registerMotorType(t, m)
	ih, _ := m.InstantiateFromType(th, "Motor0", "fleet")

	var gotSpeed int32
	assert.NoError(m.BindOperation(ih, "Start", func(args ...any) error {
		gotSpeed = args[0].(int32)
		return nil
	}))

	assert.NoError(m.InvokeOperation(ih, "Start", int32(250)))
	assert.Equal(int32(250), gotSpeed)

	var bindingErr *domain.BindingError
	assert.ErrorAs(m.BindOperation(ih, "SelfDestruct", func(args ...any) error { return nil }), &bindingErr)
	assert.ErrorAs(m.BindOperation(ih, "Stop", nil), &bindingErr)
	assert.ErrorAs(m.InvokeOperation(ih, "Stop"), &bindingErr, "declared but not bound")
}
