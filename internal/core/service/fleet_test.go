package service

import (
	"math"
	"testing"
	"time"

	"motorfleet2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestFleet(t *testing.T, count int) *Fleet {
	t.Helper()
	template, err := MotorTemplate("MotorType", 1000)
	if err != nil {
		t.Fatal(err)
	}
	fleet, err := NewFleet(template, FleetParams{
		DevicePrefix: "Motor",
		DeviceCount:  count,
		MaxSpeed:     1000,
		RampTick:     2 * time.Millisecond,
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return fleet
}

func TestNewFleetNaming(t *testing.T) {

	assert := assert.New(t)

	fleet := newTestFleet(t, 5)
	devices := fleet.Devices()
	assert.Len(devices, 5)
	assert.Equal("Motor0", devices[0].Instance.Name())
	assert.Equal("Motor4", devices[4].Instance.Name())

	dev, err := fleet.Device("Motor2")
	assert.NoError(err)
	assert.Equal("Motor2", dev.Instance.Name())
}

func TestFleetUnknownDevice(t *testing.T) {

	assert := assert.New(t)

	fleet := newTestFleet(t, 2)
	_, err := fleet.Device("Motor7")
	var unknownDevice *domain.UnknownDeviceError
	assert.ErrorAs(err, &unknownDevice)

	err = fleet.Start("Motor7", 100)
	assert.ErrorAs(err, &unknownDevice)

	err = fleet.Stop("Motor7")
	assert.ErrorAs(err, &unknownDevice)
}

func TestFleetSpeedValidation(t *testing.T) {

	assert := assert.New(t)

	fleet := newTestFleet(t, 1)

	var invalidArgument *domain.InvalidArgumentError
	assert.ErrorAs(fleet.Start("Motor0", -1), &invalidArgument)
	assert.ErrorAs(fleet.Start("Motor0", 1001), &invalidArgument)
	assert.NoError(fleet.Start("Motor0", 1000))
	assert.NoError(fleet.Stop("Motor0"))
}

// Wide integer and float speeds must be range-checked, not truncated: a value
// past int32 would otherwise wrap into the accepted range.
func TestFleetSpeedCoercionDoesNotWrap(t *testing.T) {

	assert := assert.New(t)

	fleet := newTestFleet(t, 1)
	dev, err := fleet.Device("Motor0")
	assert.NoError(err)

	var invalidArgument *domain.InvalidArgumentError
	assert.ErrorAs(dev.Instance.Invoke(domain.OP_START, int64(1)<<32+42), &invalidArgument)
	assert.ErrorAs(dev.Instance.Invoke(domain.OP_START, int64(math.MinInt32)-1), &invalidArgument)
	assert.ErrorAs(dev.Instance.Invoke(domain.OP_START, float64(1<<33)), &invalidArgument)
	assert.NoError(dev.Instance.Invoke(domain.OP_START, int64(42)))
	assert.NoError(dev.Instance.Invoke(domain.OP_START, float64(42)))

	snap := dev.Controller.Snapshot()
	assert.Equal(int32(42), snap.TargetSpeed)
}

func TestFleetStartRampsOneDeviceOnly(t *testing.T) {

	assert := assert.New(t)

	fleet := newTestFleet(t, 3)
	assert.NoError(fleet.Start("Motor1", 3))

	dev, _ := fleet.Device("Motor1")
	waitForSpeed(t, dev.Controller, 3, 2*time.Second)

	snaps := fleet.Snapshots()
	assert.Len(snaps, 3)
	assert.Equal(int32(0), snaps[0].ActualSpeed)
	assert.Equal(int32(3), snaps[1].ActualSpeed)
	assert.True(snaps[1].Running)
	assert.Equal(int32(0), snaps[2].ActualSpeed)
	assert.False(snaps[2].Running)
}

func TestMotorTemplateShape(t *testing.T) {

	assert := assert.New(t)

	template, err := MotorTemplate("MotorType", 1000)
	assert.NoError(err)
	assert.Equal("MotorType", template.Name())

	attrs := template.Attributes()
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	assert.Contains(names, domain.ATTR_ACTUAL_SPEED)
	assert.Contains(names, domain.ATTR_STATUS)
	assert.Contains(names, domain.ATTR_TEMPERATURE)

	ops := template.Operations()
	assert.Len(ops, 2)
}
