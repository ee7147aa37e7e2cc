package actorutil

import (
	"log/slog"
	"strconv"
	"time"

	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

// PipeToSelfWithRecover forwards a future's result to the actor's own
// mailbox, substituting mapFn's fallback message on timeout or failure.
func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedCommandToRequest translates an inbound MQTT command into the actor
// request the command actor dispatches. A nil request means the command is
// not recognized and should be ignored.
func ParsedCommandToRequest(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.Operation {
	case mqtt.COMMAND_START:
		speed, err := strconv.ParseInt(cmd.Payload, 10, 32)
		if err != nil {
			return nil, &domain.InvalidArgumentError{Reason: "start payload must be a decimal speed"}
		}
		return domain.StartMotorRequest{
			Device: cmd.Device,
			Speed:  int32(speed),
		}, nil
	case mqtt.COMMAND_STOP:
		return domain.StopMotorRequest{
			Device: cmd.Device,
		}, nil
	}
	return nil, nil
}
