package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig `mapstructure:"mqtt"`

	Fleet    FleetConfig    `mapstructure:"fleet"`
	Sim      SimConfig      `mapstructure:"sim"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Port     uint           `mapstructure:"port"`
	HttpLog  bool           `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

type FleetConfig struct {
	TemplateName string `mapstructure:"template_name"`
	DevicePrefix string `mapstructure:"device_prefix"`
	DeviceCount  uint   `mapstructure:"device_count"`
	MaxSpeed     int32  `mapstructure:"max_speed"`
}

type SimConfig struct {
	RampTickMillis     uint32 `mapstructure:"ramp_tick_millis"`
	SyncIntervalMillis uint32 `mapstructure:"sync_interval_millis"`
	Seed               int64  `mapstructure:"seed"`
}

type MetadataConfig struct {
	Enable         bool `mapstructure:"enable"`
	RefreshMinutes uint `mapstructure:"refresh_minutes"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
