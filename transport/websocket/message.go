package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

const (
	ActionNew   = "session:new"
	ActionStart = "session:start"
	ActionMove  = "session:move"
	ActionAuto  = "session:auto"
	ActionUndo  = "session:undo"
	ActionReset = "session:reset"
	ActionStop  = "session:stop"
	ActionState = "session:state"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID string           `json:"session_id,omitempty"`
	Cell      *int             `json:"cell,omitempty"`
	Settings  *entity.Settings `json:"settings,omitempty"`
}

type ResponsePayload struct {
	Session *entity.Snapshot `json:"session,omitempty"`
	Error   string           `json:"error,omitempty"`
}
