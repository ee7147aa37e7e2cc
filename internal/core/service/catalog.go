package service

import (
	"motorfleet2mqtt/internal/core/domain"
)

// MotorTemplate declares the public shape shared by every simulated motor:
// live telemetry attributes plus the Start/Stop operation signatures.
func MotorTemplate(name string, maxSpeed int32) (*domain.DeviceTemplate, error) {
	attrs := []domain.AttributeSpec{
		{
			Name:      domain.ATTR_ACTUAL_SPEED,
			Type:      domain.TypeInt32,
			Mandatory: true,
			Props: &domain.AttributeProps{
				Unit:     "rpm",
				Min:      0,
				Max:      float64(maxSpeed),
				HasRange: true,
			},
		},
		{
			Name:      domain.ATTR_STATUS,
			Type:      domain.TypeBool,
			Mandatory: true,
		},
		{
			Name:      domain.ATTR_TEMPERATURE,
			Type:      domain.TypeDouble,
			Mandatory: true,
			Props: &domain.AttributeProps{
				Unit: "°C",
			},
		},
		{
			Name: domain.ATTR_TARGET_SPEED,
			Type: domain.TypeInt32,
		},
	}
	ops := []domain.OperationSpec{
		{
			Name: domain.OP_START,
			Input: []domain.ParamSpec{
				{Name: "TargetSpeed", Type: domain.TypeInt32, Description: "commanded target speed in rpm"},
			},
		},
		{
			Name: domain.OP_STOP,
		},
	}
	return domain.NewDeviceTemplate(name, attrs, ops)
}
