package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/Motor2/command/start"
	r := commandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "Motor2", "device extract")
	assert.Equal(matches[0][2], "start", "operation extract")
}

func TestCommandParseStop(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/Motor0/command/stop"
	r := commandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "Motor0", "device extract")
	assert.Equal(matches[0][2], "stop", "operation extract")
}

func TestCommandParseFailStateTopic(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/Motor2/actualspeed/state"
	r := commandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestCommandParseFailUnknownOperation(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/Motor2/command/reverse"
	r := commandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestTopicBuilders(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("motorfleet/Motor0/actualspeed/state", AttributeStateTopic("motorfleet", "Motor0", "ActualSpeed"))
	assert.Equal("motorfleet/Motor0/command/start", CommandTopic("motorfleet", "Motor0", "start"))
	assert.Equal("motorfleet/meta/type/MotorType", TypeMetadataTopic("motorfleet", "MotorType"))
	assert.Equal("motorfleet/meta/device/Motor0", DeviceMetadataTopic("motorfleet", "Motor0"))
	assert.Equal("motorfleet/bridge/state", bridgeStateTopic("motorfleet"))
}
