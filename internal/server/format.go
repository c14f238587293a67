package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type HeaderFormat string

const (
	HeaderFormatJSON HeaderFormat = "json"
	HeaderFormatYAML HeaderFormat = "yaml"
)

const indent = "    "

func ParseHeaderFormat(s string) (HeaderFormat, error) {
	switch HeaderFormat(strings.ToLower(s)) {
	case "", HeaderFormatJSON:
		return HeaderFormatJSON, nil
	case HeaderFormatYAML:
		return HeaderFormatYAML, nil
	default:
		return "", fmt.Errorf("unknown header format %q, want json or yaml", s)
	}
}

// Format renders headers as an indented mapping in their given order.
func (f HeaderFormat) Format(hs Headers) (string, error) {
	switch f {
	case HeaderFormatYAML:
		return formatYAML(hs)
	default:
		return formatJSON(hs)
	}
}

func formatJSON(hs Headers) (string, error) {
	if len(hs) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, h := range hs {
		name, err := jsonString(h.Name)
		if err != nil {
			return "", err
		}
		value, err := jsonString(h.Value)
		if err != nil {
			return "", err
		}
		b.WriteString(indent)
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		if i < len(hs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteByte('}')
	return b.String(), nil
}

func jsonString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// formatYAML starts with a newline so the mapping lands below its label.
func formatYAML(hs Headers) (string, error) {
	if len(hs) == 0 {
		return "{}", nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, h := range hs {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Value},
		)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(len(indent))
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return "\n" + strings.TrimSuffix(buf.String(), "\n"), nil
}
