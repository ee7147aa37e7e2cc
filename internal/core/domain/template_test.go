package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAttrs() []AttributeSpec {
	return []AttributeSpec{
		{Name: "ActualSpeed", Type: TypeInt32, Mandatory: true},
		{Name: "Status", Type: TypeBool, Mandatory: true},
		{Name: "Temperature", Type: TypeDouble, Mandatory: true},
	}
}

func testOps() []OperationSpec {
	return []OperationSpec{
		{Name: "Start", Input: []ParamSpec{{Name: "TargetSpeed", Type: TypeInt32}}},
		{Name: "Stop"},
	}
}

func TestNewDeviceTemplate(t *testing.T) {

	assert := assert.New(t)

	tpl, err := NewDeviceTemplate("MotorType", testAttrs(), testOps())
	assert.NoError(err)
	assert.Equal("MotorType", tpl.Name())
	assert.Len(tpl.Attributes(), 3)
	assert.Len(tpl.Operations(), 2)
}

func TestNewDeviceTemplateEmptyName(t *testing.T) {

	assert := assert.New(t)

	_, err := NewDeviceTemplate("", testAttrs(), testOps())
	var schemaErr *SchemaError
	assert.ErrorAs(err, &schemaErr)
}

func TestNewDeviceTemplateDuplicateAttribute(t *testing.T) {

	assert := assert.New(t)

	attrs := append(testAttrs(), AttributeSpec{Name: "ActualSpeed", Type: TypeInt32})
	_, err := NewDeviceTemplate("MotorType", attrs, testOps())
	var schemaErr *SchemaError
	assert.ErrorAs(err, &schemaErr)
}

func TestNewDeviceTemplateDuplicateOperation(t *testing.T) {

	assert := assert.New(t)

	ops := append(testOps(), OperationSpec{Name: "Stop"})
	_, err := NewDeviceTemplate("MotorType", testAttrs(), ops)
	var schemaErr *SchemaError
	assert.ErrorAs(err, &schemaErr)
}

func TestNewDeviceTemplateUnknownType(t *testing.T) {

	assert := assert.New(t)

	attrs := append(testAttrs(), AttributeSpec{Name: "Oddball", Type: SemanticType(99)})
	_, err := NewDeviceTemplate("MotorType", attrs, testOps())
	var schemaErr *SchemaError
	assert.ErrorAs(err, &schemaErr)
}

func TestTemplateAttributesAreACopy(t *testing.T) {

	assert := assert.New(t)

	tpl, err := NewDeviceTemplate("MotorType", testAttrs(), testOps())
	assert.NoError(err)

	attrs := tpl.Attributes()
	attrs[0].Name = "Mutated"

	assert.Equal("ActualSpeed", tpl.Attributes()[0].Name)
}

func TestSemanticTypeDefaults(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(int32(0), TypeInt32.Default())
	assert.Equal(false, TypeBool.Default())
	assert.Equal(float64(0), TypeDouble.Default())

	assert.True(TypeInt32.Accepts(int32(7)))
	assert.False(TypeInt32.Accepts(7.5))
	assert.True(TypeDouble.Accepts(7.5))
	assert.False(TypeBool.Accepts("on"))
}
