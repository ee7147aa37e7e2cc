package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/events"
	"motorfleet2mqtt/internal/core/service"
	"motorfleet2mqtt/internal/mqtt"
	"motorfleet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// MetadataActor publishes the retained type and instance documents that make
// the fleet's registered shape discoverable by remote callers, plus a
// re-mirror of the current retained state topics. It publishes once after the
// MQTT actor is healthy and again on every RefreshMetadata.
type MetadataActor struct {
	config    *config.Config
	behavior  actor.Behavior
	stash     *actorutil.Stash
	mqttActor *actor.PID
	fleet     *service.Fleet

	logger *zap.Logger
}

type metadataDocs struct {
	messages []domain.PublishMessageRequest
	updates  []domain.PublishAttributeUpdateRequest
}

func NewMetadataActor(config *config.Config, fleet *service.Fleet, mqttActor *actor.PID, logger *zap.Logger) *MetadataActor {
	act := &MetadataActor{
		config:    config,
		fleet:     fleet,
		mqttActor: mqttActor,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_METADATA, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MetadataActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MetadataActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("metadata@starting started")

		// wait for the MQTT actor before publishing anything
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("metadata@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MetadataActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("metadata@healthcheck ActorHealthResponse", zap.Bool("healthy", msg.Healthy))
		if msg.Healthy {
			state.publishMetadata(ctx)
		} else {
			state.logger.Error("metadata@healthcheck MQTT actor not healthy, metadata not published")
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("metadata@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MetadataActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_METADATA,
			Healthy: true,
			State:   "idle",
		})
	case domain.RefreshMetadata:
		state.logger.Debug("metadata@default RefreshMetadata")
		state.publishMetadata(ctx)
	case metadataDocs:
		for _, m := range msg.messages {
			ctx.Send(state.mqttActor, m)
		}
		for _, u := range msg.updates {
			ctx.Send(state.mqttActor, u)
		}
	default:
		state.logger.Debug("metadata@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// publishMetadata marshals the documents off the actor goroutine and pipes
// them back for sending.
func (state *MetadataActor) publishMetadata(ctx actor.Context) {
	baseTopic := state.config.MQTT.BaseTopic
	template := state.fleet.Template()
	devices := state.fleet.Devices()
	snapshots := state.fleet.Snapshots()
	logger := state.logger

	actorutil.NewBackgroundTaskNoError(ctx, func() *metadataDocs {
		var messages []domain.PublishMessageRequest

		typeDoc, err := json.Marshal(mqtt.TemplateToMetadataMessage(template))
		if err != nil {
			logger.Error("metadata@publish type doc marshal failed", zap.Error(err))
			return &metadataDocs{}
		}
		messages = append(messages, domain.PublishMessageRequest{
			Topic:   mqtt.TypeMetadataTopic(baseTopic, template.Name()),
			Payload: string(typeDoc),
			Retain:  true,
		})

		for _, dev := range devices {
			name := dev.Instance.Name()
			doc, err := json.Marshal(mqtt.DeviceToMetadataMessage(baseTopic, template, name, ""))
			if err != nil {
				logger.Error("metadata@publish device doc marshal failed", zap.String("device", name), zap.Error(err))
				continue
			}
			messages = append(messages, domain.PublishMessageRequest{
				Topic:   mqtt.DeviceMetadataTopic(baseTopic, name),
				Payload: string(doc),
				Retain:  true,
			})
		}

		// re-mirror the retained state topics alongside the documents, so a
		// broker that lost its retained set recovers on the next refresh
		var updates []domain.PublishAttributeUpdateRequest
		for _, snap := range snapshots {
			for _, ev := range events.SnapshotToUpdateEvents(snap) {
				if event, ok := ev.(domain.AttributeUpdateEvent); ok {
					updates = append(updates, domain.PublishAttributeUpdateRequest{
						Retain: true,
						Event:  event,
					})
				}
			}
		}
		return &metadataDocs{messages: messages, updates: updates}
	}).WithTimeout(2 * time.Second).PipeTo(ctx.Self())
}
