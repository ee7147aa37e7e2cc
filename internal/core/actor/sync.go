package actor

import (
	"errors"
	"fmt"
	"time"

	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/events"
	"motorfleet2mqtt/internal/core/port"
	"motorfleet2mqtt/internal/core/service"
	. "motorfleet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// SyncActor is the periodic synchronizer: on every tick it snapshots each
// motor and pushes the values into the external tree, then mirrors them on
// the event stream. The next tick is scheduled only after the current one
// finished, so an overrunning tick defers instead of overlapping.
type SyncActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	config      *config.Config
	fleet       *service.Fleet
	tree        port.AttributeTree
	handles     map[string]port.InstanceHandle
	eventStream *eventstream.EventStream
	tickCount   uint64

	logger *zap.Logger
}

type syncTick struct {
}

func NewSyncActor(config *config.Config, fleet *service.Fleet, tree port.AttributeTree,
	handles map[string]port.InstanceHandle, eventStream *eventstream.EventStream, logger *zap.Logger) *SyncActor {
	act := &SyncActor{
		config:      config,
		fleet:       fleet,
		tree:        tree,
		handles:     handles,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_SYNC, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *SyncActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SyncActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("sync@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.scheduler.RequestOnce(state.interval(), ctx.Self(), syncTick{})

		state.eventStream.Publish(events.BridgeStateEvent(true))

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("sync@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SyncActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("sync@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SYNC,
			Healthy: true,
			State:   fmt.Sprintf("ticks=%d", state.tickCount),
		})
	case syncTick:
		state.logger.Debug("sync@default tick")
		state.syncAll()
		state.tickCount++
		// next tick only after this one completed
		state.scheduler.RequestOnce(state.interval(), ctx.Self(), syncTick{})
	default:
		state.logger.Debug("sync@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// syncAll pushes one snapshot per device into the tree. A write failure skips
// that device and keeps going; telemetry self-corrects on the next tick.
func (state *SyncActor) syncAll() {
	for _, snap := range state.fleet.Snapshots() {
		handle, ok := state.handles[snap.Name]
		if !ok {
			state.logger.Error("sync@tick no tree handle", zap.String("device", snap.Name))
			continue
		}
		if err := state.writeSnapshot(handle, snap); err != nil {
			var syncErr *domain.SyncWriteError
			if errors.As(err, &syncErr) {
				state.logger.Error("sync@tick write failed", zap.String("device", snap.Name), zap.Error(err))
			} else {
				state.logger.Error("sync@tick unexpected error", zap.String("device", snap.Name), zap.Error(err))
			}
			continue
		}
		for _, ev := range events.SnapshotToUpdateEvents(snap) {
			state.eventStream.Publish(ev)
		}
	}
}

func (state *SyncActor) writeSnapshot(handle port.InstanceHandle, snap service.MotorSnapshot) error {
	writes := []struct {
		attr  string
		value any
	}{
		{domain.ATTR_ACTUAL_SPEED, snap.ActualSpeed},
		{domain.ATTR_STATUS, snap.Running},
		{domain.ATTR_TEMPERATURE, snap.Temperature},
		{domain.ATTR_TARGET_SPEED, snap.TargetSpeed},
	}
	for _, w := range writes {
		if err := state.tree.WriteAttribute(handle, w.attr, w.value); err != nil {
			return &domain.SyncWriteError{Device: snap.Name, Attribute: w.attr, Err: err}
		}
	}
	return nil
}

func (state *SyncActor) interval() time.Duration {
	return time.Duration(state.config.Sim.SyncIntervalMillis) * time.Millisecond
}
