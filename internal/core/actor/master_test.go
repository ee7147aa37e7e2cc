package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "motorfleet2mqtt/internal/adapter/actor"
	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/domain"
	"motorfleet2mqtt/internal/core/port"
	"motorfleet2mqtt/internal/core/service"
	"motorfleet2mqtt/internal/mqtt"
	"motorfleet2mqtt/internal/tree"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type masterFixture struct {
	cfg     config.Config
	fleet   *service.Fleet
	tree    *tree.MemoryTree
	handles map[string]port.InstanceHandle
}

func spawnTestMaster(t *testing.T, as *pactor.ActorSystem) (*pactor.PID, *masterFixture) {
	t.Helper()

	cfg := testConfig()
	logger := zap.NewNop()
	fleet, memTree, handles := testFleetAndTree(t, cfg)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return NewMasterActor(cfg, fleet, memTree, handles, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, logger)
		}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		t.Fatal(err)
	}
	return pid, &masterFixture{cfg: cfg, fleet: fleet, tree: memTree, handles: handles}
}

func TestMasterActorHealthCheck(t *testing.T) {

	as := pactor.NewActorSystem()
	context := as.Root

	pid, _ := spawnTestMaster(t, as)

	time.Sleep(1 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorStartCommandFlow(t *testing.T) {

	assert := assert.New(t)

	as := pactor.NewActorSystem()
	context := as.Root

	pid, fixture := spawnTestMaster(t, as)

	res, err := context.RequestFuture(pid, domain.StartMotorRequest{Device: "Motor2", Speed: 42}, 10*time.Second).Result()
	assert.NoError(err)
	cmdResp, ok := res.(domain.CommandResponse)
	assert.True(ok)
	assert.False(cmdResp.HasResponseError())
	assert.Equal("Motor2", cmdResp.Device)

	// ramp to 42 plus at least one sync period
	time.Sleep(1500 * time.Millisecond)

	speed, err := fixture.tree.ReadAttribute(fixture.handles["Motor2"], domain.ATTR_ACTUAL_SPEED)
	assert.NoError(err)
	assert.Equal(int32(42), speed)

	status, err := fixture.tree.ReadAttribute(fixture.handles["Motor2"], domain.ATTR_STATUS)
	assert.NoError(err)
	assert.Equal(true, status)

	context.Stop(pid)
	as.Shutdown()
}

func TestMasterActorStopCommandFlow(t *testing.T) {

	assert := assert.New(t)

	as := pactor.NewActorSystem()
	context := as.Root

	pid, fixture := spawnTestMaster(t, as)

	_, err := context.RequestFuture(pid, domain.StartMotorRequest{Device: "Motor0", Speed: 10}, 10*time.Second).Result()
	assert.NoError(err)

	res, err := context.RequestFuture(pid, domain.StopMotorRequest{Device: "Motor0"}, 10*time.Second).Result()
	assert.NoError(err)
	cmdResp, ok := res.(domain.CommandResponse)
	assert.True(ok)
	assert.False(cmdResp.HasResponseError())

	time.Sleep(1 * time.Second)

	speed, err := fixture.tree.ReadAttribute(fixture.handles["Motor0"], domain.ATTR_ACTUAL_SPEED)
	assert.NoError(err)
	assert.Equal(int32(0), speed)

	status, err := fixture.tree.ReadAttribute(fixture.handles["Motor0"], domain.ATTR_STATUS)
	assert.NoError(err)
	assert.Equal(false, status)

	context.Stop(pid)
	as.Shutdown()
}

func TestMasterActorRejectsInvalidCommands(t *testing.T) {

	assert := assert.New(t)

	as := pactor.NewActorSystem()
	context := as.Root

	pid, _ := spawnTestMaster(t, as)

	res, err := context.RequestFuture(pid, domain.StartMotorRequest{Device: "Motor9", Speed: 10}, 10*time.Second).Result()
	assert.NoError(err)
	cmdResp, ok := res.(domain.CommandResponse)
	assert.True(ok)
	assert.True(cmdResp.HasResponseError())
	var unknownDevice *domain.UnknownDeviceError
	assert.ErrorAs(cmdResp.GetResponseError(), &unknownDevice)

	res, err = context.RequestFuture(pid, domain.StartMotorRequest{Device: "Motor0", Speed: 5000}, 10*time.Second).Result()
	assert.NoError(err)
	cmdResp, ok = res.(domain.CommandResponse)
	assert.True(ok)
	assert.True(cmdResp.HasResponseError())
	var invalidArgument *domain.InvalidArgumentError
	assert.ErrorAs(cmdResp.GetResponseError(), &invalidArgument)

	context.Stop(pid)
	as.Shutdown()
}

func TestMasterActorRoutesMQTTCommands(t *testing.T) {

	assert := assert.New(t)

	as := pactor.NewActorSystem()
	context := as.Root

	pid, fixture := spawnTestMaster(t, as)

	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		Device:    "Motor3",
		Operation: mqtt.COMMAND_START,
		Payload:   "7",
	}})

	time.Sleep(1 * time.Second)

	speed, err := fixture.tree.ReadAttribute(fixture.handles["Motor3"], domain.ATTR_ACTUAL_SPEED)
	assert.NoError(err)
	assert.Equal(int32(7), speed)

	context.Stop(pid)
	as.Shutdown()
}
