// Package synapse defines what the tracker publishes to the message bus.
package synapse

import (
	"encoding/json"
	"time"

	"github.com/Robogera/track/pkg/tracker"
	"github.com/google/uuid"
)

const CommandTypeTracks = "tracks"

type Command struct {
	Id      uint64    `json:"id"`
	Sender  string    `json:"sender"`
	Type    string    `json:"type"`
	Session uuid.UUID `json:"session"`
	Sent    time.Time `json:"sent"`
	Message *Message  `json:"message"`
}

// Confirmed tracks of one frame of one stream
type Message struct {
	Stream string                  `json:"stream"`
	Frame  uint64                  `json:"frame"`
	Tracks []tracker.ExportedTrack `json:"tracks"`
}

func NewCommand(id uint64, sender string, session uuid.UUID, message *Message) *Command {
	return &Command{
		Id:      id,
		Sender:  sender,
		Type:    CommandTypeTracks,
		Session: session,
		Sent:    time.Now().UTC(),
		Message: message,
	}
}

func (c *Command) ToPayload() ([]byte, error) {
	return json.Marshal(c)
}

func FromPayload(payload []byte) (*Command, error) {
	c := new(Command)
	if err := json.Unmarshal(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}
