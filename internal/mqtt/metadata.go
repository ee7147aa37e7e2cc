package mqtt

import (
	"strings"

	"motorfleet2mqtt/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

// Metadata documents are the retained, remotely-readable mirror of the type
// registration: the full declared shape of the template plus, per device, the
// topics a caller needs to observe or command it.

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type AttributeMetadata struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Mandatory bool     `json:"mandatory"`
	Unit      string   `json:"unit,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

type ParamMetadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type OperationMetadata struct {
	Name   string          `json:"name"`
	Input  []ParamMetadata `json:"input,omitempty"`
	Output []ParamMetadata `json:"output,omitempty"`
}

type TypeMetadataMessage struct {
	Name       string              `json:"name"`
	Server     ServerInfo          `json:"server"`
	Attributes []AttributeMetadata `json:"attributes"`
	Operations []OperationMetadata `json:"operations"`
}

type DeviceMetadataMessage struct {
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	Parent        string            `json:"parent,omitempty"`
	StateTopics   map[string]string `json:"state_topics"`
	CommandTopics map[string]string `json:"command_topics"`
}

func TemplateToMetadataMessage(t *domain.DeviceTemplate) TypeMetadataMessage {
	msg := TypeMetadataMessage{
		Name: t.Name(),
		Server: ServerInfo{
			Name:    "motorfleet2mqtt",
			Version: versioninfo.Short(),
		},
	}
	for _, a := range t.Attributes() {
		am := AttributeMetadata{
			Name:      a.Name,
			Type:      a.Type.String(),
			Mandatory: a.Mandatory,
		}
		if a.Props != nil {
			am.Unit = a.Props.Unit
			if a.Props.HasRange {
				minV, maxV := a.Props.Min, a.Props.Max
				am.Min = &minV
				am.Max = &maxV
			}
		}
		msg.Attributes = append(msg.Attributes, am)
	}
	for _, op := range t.Operations() {
		msg.Operations = append(msg.Operations, OperationMetadata{
			Name:   op.Name,
			Input:  paramsToMetadata(op.Input),
			Output: paramsToMetadata(op.Output),
		})
	}
	return msg
}

func DeviceToMetadataMessage(baseTopic string, t *domain.DeviceTemplate, device, parent string) DeviceMetadataMessage {
	msg := DeviceMetadataMessage{
		Name:          device,
		Type:          t.Name(),
		Parent:        parent,
		StateTopics:   map[string]string{},
		CommandTopics: map[string]string{},
	}
	for _, a := range t.Attributes() {
		msg.StateTopics[a.Name] = AttributeStateTopic(baseTopic, device, a.Name)
	}
	for _, op := range t.Operations() {
		msg.CommandTopics[op.Name] = CommandTopic(baseTopic, device, strings.ToLower(op.Name))
	}
	return msg
}

func paramsToMetadata(params []domain.ParamSpec) []ParamMetadata {
	var out []ParamMetadata
	for _, p := range params {
		out = append(out, ParamMetadata{
			Name:        p.Name,
			Type:        p.Type.String(),
			Description: p.Description,
		})
	}
	return out
}
