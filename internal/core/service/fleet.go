package service

import (
	"fmt"
	"math"
	"time"

	"motorfleet2mqtt/internal/core/domain"

	"go.uber.org/zap"
)

type FleetParams struct {
	DevicePrefix string
	DeviceCount  int
	MaxSpeed     int32
	RampTick     time.Duration
	// Jitter builds the per-device randomness source. Nil means the
	// controller default.
	Jitter func(deviceIndex int) JitterSource
}

// Device is one fleet member: the instance stamped from the template plus the
// ramp controller that exclusively owns its state.
type Device struct {
	Instance   *domain.DeviceInstance
	Controller *RampController
}

// Fleet owns the list of device instances created from one template. It is a
// pure collection owner: it never mutates device state on its own.
type Fleet struct {
	template *domain.DeviceTemplate
	maxSpeed int32
	devices  map[string]*Device
	order    []string
	logger   *zap.Logger
}

// NewFleet stamps params.DeviceCount devices named <prefix>0..<prefix>N-1,
// each with its own RampController bound to the template's Start/Stop
// operations. All errors here are fatal to startup.
func NewFleet(template *domain.DeviceTemplate, params FleetParams, logger *zap.Logger) (*Fleet, error) {
	fleet := &Fleet{
		template: template,
		maxSpeed: params.MaxSpeed,
		devices:  make(map[string]*Device, params.DeviceCount),
		logger:   logger,
	}
	for i := 0; i < params.DeviceCount; i++ {
		name := fmt.Sprintf("%s%d", params.DevicePrefix, i)
		if _, exists := fleet.devices[name]; exists {
			return nil, &domain.DuplicateNameError{Name: name}
		}
		var jitter JitterSource
		if params.Jitter != nil {
			jitter = params.Jitter(i)
		}
		ctrl := NewRampController(name, params.RampTick, jitter, logger)
		instance, err := template.Instantiate(name, fleet.bindingsFor(ctrl), nil)
		if err != nil {
			return nil, err
		}
		fleet.devices[name] = &Device{Instance: instance, Controller: ctrl}
		fleet.order = append(fleet.order, name)
	}
	return fleet, nil
}

// bindingsFor wires the template's declared operations to one controller.
// Speed validation lives here so every dispatch path shares it.
func (f *Fleet) bindingsFor(ctrl *RampController) domain.OperationBindings {
	return domain.OperationBindings{
		domain.OP_START: func(args ...any) error {
			speed, err := f.coerceSpeed(args)
			if err != nil {
				return err
			}
			ctrl.Start(speed)
			return nil
		},
		domain.OP_STOP: func(args ...any) error {
			ctrl.Stop()
			return nil
		},
	}
}

func (f *Fleet) coerceSpeed(args []any) (int32, error) {
	if len(args) != 1 {
		return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("Start expects 1 argument, got %d", len(args))}
	}
	var speed int32
	switch v := args[0].(type) {
	case int32:
		speed = v
	case int:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("speed %d out of range", v)}
		}
		speed = int32(v)
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("speed %d out of range", v)}
		}
		speed = int32(v)
	case float64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("speed %f out of range", v)}
		}
		speed = int32(v)
	default:
		return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("speed must be numeric, got %T", args[0])}
	}
	if speed < 0 {
		return 0, &domain.InvalidArgumentError{Reason: "speed must be >= 0"}
	}
	if f.maxSpeed > 0 && speed > f.maxSpeed {
		return 0, &domain.InvalidArgumentError{Reason: fmt.Sprintf("speed must be <= %d", f.maxSpeed)}
	}
	return speed, nil
}

func (f *Fleet) Template() *domain.DeviceTemplate {
	return f.template
}

func (f *Fleet) Device(name string) (*Device, error) {
	dev, ok := f.devices[name]
	if !ok {
		return nil, &domain.UnknownDeviceError{Device: name}
	}
	return dev, nil
}

// Devices returns the fleet members in creation order.
func (f *Fleet) Devices() []*Device {
	out := make([]*Device, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.devices[name])
	}
	return out
}

// Start dispatches through the instance's bound operation, so remote and
// local callers share one code path.
func (f *Fleet) Start(device string, speed int32) error {
	dev, err := f.Device(device)
	if err != nil {
		return err
	}
	return dev.Instance.Invoke(domain.OP_START, speed)
}

func (f *Fleet) Stop(device string) error {
	dev, err := f.Device(device)
	if err != nil {
		return err
	}
	return dev.Instance.Invoke(domain.OP_STOP)
}

// Snapshots reads every device once, in creation order.
func (f *Fleet) Snapshots() []MotorSnapshot {
	out := make([]MotorSnapshot, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.devices[name].Controller.Snapshot())
	}
	return out
}
