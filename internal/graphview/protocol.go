// Package graphview hosts the live graph rendering surface: the message
// protocol spoken over the surface channel, the coordinator that owns the
// surface lifecycle, and the bridges feeding it style and selection updates.
package graphview

import (
	"encoding/json"
	"fmt"

	"github.com/starford/othala/internal/graph"
)

// Outbound message types (host → surface).
const (
	MsgDidUpdateStyle     = "didUpdateStyle"
	MsgDidUpdateGraphData = "didUpdateGraphData"
	MsgDidSelectNote      = "didSelectNote"
)

// Inbound message types (surface → host).
const (
	MsgWebviewDidLoad       = "webviewDidLoad"
	MsgWebviewDidSelectNode = "webviewDidSelectNode"
	MsgError                = "error"
)

// OutboundMessage is a host → surface frame. Pushes are fire-and-forget;
// no acknowledgment is ever awaited.
type OutboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// InboundMessage is a surface → host frame. Payload stays raw until the
// dispatch site knows the type.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GraphPayload is the didUpdateGraphData payload shape.
type GraphPayload struct {
	NodeInfo map[string]graph.Node `json:"nodeInfo"`
	Links    []graph.Edge          `json:"links"`
}

// StyleMessage wraps the opaque style configuration for transmission.
func StyleMessage(style any) OutboundMessage {
	return OutboundMessage{Type: MsgDidUpdateStyle, Payload: style}
}

// GraphMessage packages a snapshot for transmission.
func GraphMessage(s *graph.Snapshot) OutboundMessage {
	return OutboundMessage{Type: MsgDidUpdateGraphData, Payload: GraphPayload{
		NodeInfo: s.NodeInfo,
		Links:    s.Links(),
	}}
}

// SelectMessage instructs the surface to highlight the node with the given id.
func SelectMessage(id string) OutboundMessage {
	return OutboundMessage{Type: MsgDidSelectNote, Payload: id}
}

// DecodeInbound parses a raw surface frame.
func DecodeInbound(raw []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("graphview: decode inbound: %w", err)
	}
	return msg, nil
}
