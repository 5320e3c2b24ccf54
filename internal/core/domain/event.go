package domain

import "time"

// UIEventType names what a UIEvent carries.
type UIEventType string

const (
	EventInputRequest UIEventType = "input_request"
	EventPlaces       UIEventType = "places"
	EventMessage      UIEventType = "message"
)

// UIEvent is the envelope pushed to the host UI over the event bus and
// relayed to WebSocket clients unchanged.
type UIEvent struct {
	Type    UIEventType   `json:"type"`
	Request *InputRequest `json:"request,omitempty"`
	Places  []Place       `json:"places,omitempty"`
	Message string        `json:"message,omitempty"`
	Time    time.Time     `json:"time"`
}

// InputResponse is an answer coming back from the host UI.
type InputResponse struct {
	Tag     InputTag `json:"tag"`
	Content string   `json:"content"`
}
