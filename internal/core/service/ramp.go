package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultRampTick    = 100 * time.Millisecond
	ambientTemperature = 21.5
)

// MotorSnapshot is a torn-free point-in-time read of one motor's state.
// Temperature is derived at read time, never stored.
type MotorSnapshot struct {
	Name        string
	TargetSpeed int32
	ActualSpeed int32
	Running     bool
	Temperature float64
}

// JitterSource yields a value in [0, 1). Injected so tests are deterministic.
type JitterSource func() float64

// RampController owns one motor's mutable state and drives its actual speed
// toward the commanded target in unit steps, one tick at a time. At most one
// ramp goroutine is active per controller: Start/Stop either spawn the slot's
// goroutine or retarget the one already running, never a second writer.
type RampController struct {
	name   string
	tick   time.Duration
	jitter JitterSource
	logger *zap.Logger

	mu          sync.Mutex
	targetSpeed int32
	actualSpeed int32
	running     bool
	ramping     bool
}

func NewRampController(name string, tick time.Duration, jitter JitterSource, logger *zap.Logger) *RampController {
	if tick <= 0 {
		tick = DefaultRampTick
	}
	if jitter == nil {
		jitter = func() float64 { return 0.5 }
	}
	return &RampController{
		name:   name,
		tick:   tick,
		jitter: jitter,
		logger: logger.With(zap.String("motor", name)),
	}
}

func (c *RampController) Name() string {
	return c.name
}

// Start marks the motor running and ramps toward target.
func (c *RampController) Start(target int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.targetSpeed = target
	c.ensureRampLocked()
}

// Stop marks the motor stopped and ramps down to zero. Calling Stop on an
// already-stopped motor is a no-op.
func (c *RampController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.targetSpeed = 0
	c.ensureRampLocked()
}

// ensureRampLocked spawns the single ramp goroutine if it is dormant and
// there is work to do. Callers must hold c.mu.
func (c *RampController) ensureRampLocked() {
	if c.ramping || c.actualSpeed == c.targetSpeed {
		return
	}
	c.ramping = true
	go c.ramp()
}

func (c *RampController) ramp() {
	defer func() {
		if r := recover(); r != nil {
			// fault during a tick: keep last consistent state, free the slot
			c.logger.Error("ramp tick fault", zap.Any("reason", r))
			c.mu.Lock()
			c.ramping = false
			c.mu.Unlock()
		}
	}()
	for {
		time.Sleep(c.tick)
		c.mu.Lock()
		if c.actualSpeed < c.targetSpeed {
			c.actualSpeed++
		} else if c.actualSpeed > c.targetSpeed {
			c.actualSpeed--
		}
		if c.actualSpeed == c.targetSpeed {
			c.ramping = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// Snapshot reads all state under one lock acquisition so a reader never
// observes a torn update.
func (c *RampController) Snapshot() MotorSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return MotorSnapshot{
		Name:        c.name,
		TargetSpeed: c.targetSpeed,
		ActualSpeed: c.actualSpeed,
		Running:     c.running,
		Temperature: c.temperatureLocked(),
	}
}

// temperatureLocked derives the simulated cabinet temperature from the
// running state and actual speed plus bounded jitter.
func (c *RampController) temperatureLocked() float64 {
	j := c.jitter() - 0.5
	if !c.running && c.actualSpeed == 0 {
		return ambientTemperature + j*0.2
	}
	return ambientTemperature + 0.05*float64(c.actualSpeed) + j
}
