package synapse

import (
	"encoding/json"
	"testing"

	"github.com/Robogera/track/pkg/tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload(t *testing.T) {
	session := uuid.New()
	cmd := NewCommand(42, "tracker", session, &Message{
		Stream: "cam0",
		Frame:  7,
		Tracks: []tracker.ExportedTrack{{Id: 3, Box: [4]float64{1, 2, 3, 4}, Label: "person", Color: "#ff0000"}},
	})
	payload, err := cmd.ToPayload()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Equal(t, session.String(), raw["session"])
	assert.Equal(t, CommandTypeTracks, raw["type"])

	decoded, err := FromPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, session, decoded.Session)
	assert.Equal(t, uint64(42), decoded.Id)
	require.Len(t, decoded.Message.Tracks, 1)
	assert.Equal(t, "cam0", decoded.Message.Stream)
	assert.Equal(t, cmd.Message.Tracks[0].Box, decoded.Message.Tracks[0].Box)
}

func TestFromPayloadRejectsGarbage(t *testing.T) {
	_, err := FromPayload([]byte("{"))
	assert.Error(t, err)
}
