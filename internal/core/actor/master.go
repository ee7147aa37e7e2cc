package actor

import (
	"fmt"
	"log"
	"time"

	adactor "motorfleet2mqtt/internal/adapter/actor"
	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/port"
	"motorfleet2mqtt/internal/core/service"
	. "motorfleet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

// MasterActor supervises the fleet's actor tree: the MQTT adapter, the
// synchronizer, the command dispatcher and optionally the metadata publisher.
// It also routes inbound commands from both remote surfaces to the command
// actor.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	fleet   *service.Fleet
	tree    port.AttributeTree
	handles map[string]port.InstanceHandle

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	mqttActor          *actor.PID
	syncActor          *actor.PID
	commandActor       *actor.PID
	metadataActor      *actor.PID
	mqttActorProvider  MQTTActorProvider
	logger             *zap.Logger
}

type healthCheckResult struct {
	mqttActorHealthy    bool
	syncActorHealthy    bool
	commandActorHealthy bool
	checksReceived      int
	respondTo           *actor.PID
}

func NewMasterActor(config config.Config, fleet *service.Fleet, tree port.AttributeTree,
	handles map[string]port.InstanceHandle, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:            config,
		fleet:             fleet,
		tree:              tree,
		handles:           handles,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       &eventstream.EventStream{},
		mqttActorProvider: mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start Command child
		commandActorPID, err := state.startCommandActor(ctx)
		if err != nil {
			panic(err)
		}
		state.commandActor = commandActorPID

		// start Sync child
		syncActorPID, err := state.startSyncActor(ctx)
		if err != nil {
			panic(err)
		}
		state.syncActor = syncActorPID

		// start Metadata child
		if state.config.Metadata.Enable {
			metadataActorPID, err := state.startMetadataActor(ctx)
			if err != nil {
				panic(err)
			}
			state.metadataActor = metadataActorPID
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// Sync Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.syncActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_SYNC,
				Healthy: false,
			}
		})
		// Command Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.commandActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_COMMAND,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// translate an inbound MQTT command and dispatch it
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedCommandToRequest(*msg.Command)
			if err != nil {
				state.logger.Warn("master@default invalid command", zap.Error(err))
			} else if cmd != nil {
				ctx.Send(state.commandActor, cmd)
			}
		}
	case domain.StartMotorRequest:
		ctx.Forward(state.commandActor)
	case domain.StopMotorRequest:
		ctx.Forward(state.commandActor)
	case domain.RefreshMetadata:
		if state.metadataActor != nil {
			ctx.Send(state.metadataActor, msg)
		}
	case *actor.Terminated:
		// if the MQTT actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_MQTT) {
			state.logger.Error("master@default mqtt terminated")
			panic(fmt.Errorf("mqtt terminated"))
		}
	default:
		state.logger.Debug("master@default ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_MQTT:
				state.currentHealthCheck.mqttActorHealthy = true
			case domain.ACTOR_ID_SYNC:
				state.currentHealthCheck.syncActorHealthy = true
			case domain.ACTOR_ID_COMMAND:
				state.currentHealthCheck.commandActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterActor) startSyncActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	syncProps := actor.PropsFromProducer(func() actor.Actor {
		return NewSyncActor(&state.config, state.fleet, state.tree, state.handles, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	syncActorPID, err := ctx.SpawnNamed(syncProps, domain.ACTOR_ID_SYNC)
	if err != nil {
		return nil, err
	}

	return syncActorPID, nil
}

func (state *MasterActor) startCommandActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	commandProps := actor.PropsFromProducer(func() actor.Actor {
		return NewCommandActor(state.tree, state.logger)
	}, actor.WithSupervisor(supervisor))
	commandActorPID, err := ctx.SpawnNamed(commandProps, domain.ACTOR_ID_COMMAND)
	if err != nil {
		return nil, err
	}

	return commandActorPID, nil
}

func (state *MasterActor) startMetadataActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	metadataProps := actor.PropsFromProducer(func() actor.Actor {
		return NewMetadataActor(&state.config, state.fleet, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	metadataActorPID, err := ctx.SpawnNamed(metadataProps, domain.ACTOR_ID_METADATA)
	if err != nil {
		return nil, err
	}

	return metadataActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.mqttActorHealthy = false
	state.syncActorHealthy = false
	state.commandActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.mqttActorHealthy && state.syncActorHealthy && state.commandActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
