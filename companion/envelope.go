// Package companion delivers compiled artifacts to the companion client
// process over a local websocket, one request and one reply per line.
package companion

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chazu/kindling/compiler"
)

// Source identifies this tool in outgoing envelopes.
const Source = "Kindling"

// Protocol selects the envelope shape sent for each artifact.
type Protocol int

const (
	// ProtocolNBT sends the full item stack:
	// {"source":"Kindling","type":"nbt","data":"<item NBT>"}
	ProtocolNBT Protocol = iota
	// ProtocolTemplate sends only the code template:
	// {"data":"<template JSON>"}
	ProtocolTemplate
)

func (p Protocol) String() string {
	switch p {
	case ProtocolNBT:
		return "nbt"
	case ProtocolTemplate:
		return "template"
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// ParseProtocol accepts "nbt" (also "v1") and "template" (also "v2").
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "", "nbt", "v1":
		return ProtocolNBT, nil
	case "template", "v2":
		return ProtocolTemplate, nil
	}
	return 0, fmt.Errorf("companion: unknown protocol %q", s)
}

type nbtEnvelope struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Data   string `json:"data"`
}

type templateEnvelope struct {
	Data string `json:"data"`
}

// Encode builds the message text for one artifact.
func (p Protocol) Encode(a compiler.Artifact) ([]byte, error) {
	var env any
	switch p {
	case ProtocolNBT:
		env = nbtEnvelope{Source: Source, Type: "nbt", Data: a.ItemNBT()}
	case ProtocolTemplate:
		env = templateEnvelope{Data: a.TemplateData()}
	default:
		return nil, fmt.Errorf("companion: unknown protocol %d", int(p))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("companion: encode envelope: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
