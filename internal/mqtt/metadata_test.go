package mqtt

import (
	"testing"

	"motorfleet2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func motorTestTemplate(t *testing.T) *domain.DeviceTemplate {
	t.Helper()
	tpl, err := domain.NewDeviceTemplate("MotorType",
		[]domain.AttributeSpec{
			{Name: "ActualSpeed", Type: domain.TypeInt32, Mandatory: true,
				Props: &domain.AttributeProps{Unit: "rpm", Min: 0, Max: 1000, HasRange: true}},
			{Name: "Status", Type: domain.TypeBool, Mandatory: true},
			{Name: "Temperature", Type: domain.TypeDouble, Mandatory: true,
				Props: &domain.AttributeProps{Unit: "°C"}},
		},
		[]domain.OperationSpec{
			{Name: "Start", Input: []domain.ParamSpec{{Name: "TargetSpeed", Type: domain.TypeInt32}}},
			{Name: "Stop"},
		})
	if err != nil {
		t.Fatal(err)
	}
	return tpl
}

func TestTemplateToMetadataMessage(t *testing.T) {

	assert := assert.New(t)

	msg := TemplateToMetadataMessage(motorTestTemplate(t))

	assert.Equal("MotorType", msg.Name)
	assert.Equal("motorfleet2mqtt", msg.Server.Name)
	assert.Len(msg.Attributes, 3)
	assert.Len(msg.Operations, 2)

	speed := msg.Attributes[0]
	assert.Equal("ActualSpeed", speed.Name)
	assert.Equal("Int32", speed.Type)
	assert.True(speed.Mandatory)
	assert.Equal("rpm", speed.Unit)
	assert.NotNil(speed.Min)
	assert.NotNil(speed.Max)
	assert.Equal(float64(1000), *speed.Max)

	status := msg.Attributes[1]
	assert.Equal("Bool", status.Type)
	assert.Nil(status.Min)

	start := msg.Operations[0]
	assert.Equal("Start", start.Name)
	assert.Len(start.Input, 1)
	assert.Equal("TargetSpeed", start.Input[0].Name)
}

func TestDeviceToMetadataMessage(t *testing.T) {

	assert := assert.New(t)

	msg := DeviceToMetadataMessage("motorfleet", motorTestTemplate(t), "Motor0", "fleet")

	assert.Equal("Motor0", msg.Name)
	assert.Equal("MotorType", msg.Type)
	assert.Equal("fleet", msg.Parent)
	assert.Equal("motorfleet/Motor0/actualspeed/state", msg.StateTopics["ActualSpeed"])
	assert.Equal("motorfleet/Motor0/command/start", msg.CommandTopics["Start"])
	assert.Equal("motorfleet/Motor0/command/stop", msg.CommandTopics["Stop"])
}
