package actor

import (
	"fmt"

	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/port"
	. "motorfleet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// CommandActor is the dispatch shim between the remote call surfaces and the
// ramp controllers: it resolves the device's tree handle and invokes the
// operation bound at setup time. It keeps no state of its own.
type CommandActor struct {
	tree   port.AttributeTree
	logger *zap.Logger
}

func NewCommandActor(tree port.AttributeTree, logger *zap.Logger) *CommandActor {
	return &CommandActor{
		tree:   tree,
		logger: ActorLogger(domain.ACTOR_ID_COMMAND, logger),
	}
}

func (state *CommandActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("command@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_COMMAND,
			Healthy: true,
			State:   "idle",
		})
	case domain.StartMotorRequest:
		state.logger.Debug("command@default StartMotorRequest",
			zap.String("device", msg.Device), zap.Int32("speed", msg.Speed))
		err := state.invoke(msg.Device, domain.OP_START, msg.Speed)
		if err != nil {
			state.logger.Warn("command@default start rejected", zap.String("device", msg.Device), zap.Error(err))
		}
		ForRequest(msg).Respond(ctx, domain.CommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			Device:             msg.Device,
		})
	case domain.StopMotorRequest:
		state.logger.Debug("command@default StopMotorRequest", zap.String("device", msg.Device))
		err := state.invoke(msg.Device, domain.OP_STOP)
		if err != nil {
			state.logger.Warn("command@default stop rejected", zap.String("device", msg.Device), zap.Error(err))
		}
		ForRequest(msg).Respond(ctx, domain.CommandResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			Device:             msg.Device,
		})
	default:
		state.logger.Debug("command@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *CommandActor) invoke(device, operation string, args ...any) error {
	handle, err := state.tree.Instance(device)
	if err != nil {
		return err
	}
	return state.tree.InvokeOperation(handle, operation, args...)
}
