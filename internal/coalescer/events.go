package coalescer

import "encoding/json"

// EditedMessage is the nested "message" object a message_changed event
// carries: the edited message's own timestamp and its new text.
type EditedMessage struct {
	TS   string `json:"ts"`
	Text string `json:"text"`
}

// Event is the subset of a chat event_callback's nested "event" object the
// coalescer routes on.
type Event struct {
	Type          string         `json:"type"`
	Subtype       string         `json:"subtype"`
	TS            string         `json:"ts"`
	ThreadTS      string         `json:"thread_ts"`
	DeletedTS     string         `json:"deleted_ts"`
	Channel       string         `json:"channel"`
	User          string         `json:"user"`
	Text          string         `json:"text"`
	Files         []any          `json:"files"`
	BotID         string         `json:"bot_id"`
	EditedMessage *EditedMessage `json:"message"`
}

// Envelope is the top-level chat event payload: either a URL verification
// handshake or an event_callback wrapping an Event.
type Envelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	Event     json.RawMessage `json:"event"`
}

// HasEvent reports whether the envelope carries a non-empty nested event
// object. An absent or empty "event" field is a documented no-op case.
func (e Envelope) HasEvent() bool {
	return len(e.Event) > 0 && string(e.Event) != "null" && string(e.Event) != "{}"
}

// DecodeEvent unmarshals the envelope's nested event object.
func (e Envelope) DecodeEvent() (Event, error) {
	var ev Event
	if !e.HasEvent() {
		return ev, nil
	}
	err := json.Unmarshal(e.Event, &ev)
	return ev, err
}
