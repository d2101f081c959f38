package stream

import (
	"encoding/json"
	"fmt"
)

// Event types carried over the chat stream. Exactly one "sources" event and
// one terminal event ("end" or "error") appear per response.
const (
	TypeToken   = "token"
	TypeSources = "sources"
	TypeError   = "error"
	TypeEnd     = "end"
)

// Event is one frame of the chat response stream.
type Event struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content,omitempty"`
}

// SourceRef is the payload element of a "sources" event. Page is one-based
// for display and null for sources without page structure.
type SourceRef struct {
	Source         string `json:"source"`
	Page           *int   `json:"page"`
	ContentSnippet string `json:"content_snippet"`
}

// Encode renders the event as one SSE frame: "data: <json>\n\n".
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal stream event: %w", err)
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

type rawEvent struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Decode parses one event payload (without the SSE framing) and rejects
// unknown event types so protocol drift fails loudly on the consumer side.
func Decode(data []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, fmt.Errorf("unmarshal stream event: %w", err)
	}

	switch raw.Type {
	case TypeToken, TypeError:
		var text string
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, &text); err != nil {
				return Event{}, fmt.Errorf("decode %s content: %w", raw.Type, err)
			}
		}
		return Event{Type: raw.Type, Content: text}, nil
	case TypeSources:
		refs := []SourceRef{}
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, &refs); err != nil {
				return Event{}, fmt.Errorf("decode sources content: %w", err)
			}
		}
		return Event{Type: TypeSources, Content: refs}, nil
	case TypeEnd:
		return Event{Type: TypeEnd}, nil
	default:
		return Event{}, fmt.Errorf("unknown stream event type %q", raw.Type)
	}
}
