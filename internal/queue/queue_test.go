package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

func TestLaneFor(t *testing.T) {
	l, err := LaneFor(domain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "json_event", l.EventType)

	l, err = LaneFor(domain.FormatXML)
	require.NoError(t, err)
	assert.Equal(t, "xml_event", l.EventType)

	_, err = LaneFor("csv")
	assert.Error(t, err)
}

func TestMessageEventType(t *testing.T) {
	assert.Equal(t, "xml_event", Message{Attributes: map[string]string{EventTypeAttribute: "xml_event"}}.EventType())
	assert.Empty(t, Message{}.EventType())
}
