package ping

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatron/actions"
	"alphatron/models"
)

func TestFeature_OnEvent(t *testing.T) {
	feature := NewFeature()
	assert.Equal(t, "ping", feature.Name())

	t.Run("replies pong to a ping mention", func(t *testing.T) {
		set := actions.NewActionSet(httptest.NewRecorder(), 1)

		feature.OnEvent(context.Background(), models.AppMentionEvent{Channel: "C1", Text: "<@UBOT> ping"}, set)

		assert.Equal(t, actions.StateFlushed, set.State())
		require.Len(t, set.Actions(), 1)
		assert.Equal(t, models.Action{
			Method: models.MethodChatPostMessage,
			Body:   models.PostMessageBody{Channel: "C1", Text: "pong"},
		}, set.Actions()[0])
	})

	t.Run("replies in the thread of a threaded mention", func(t *testing.T) {
		set := actions.NewActionSet(httptest.NewRecorder(), 1)

		feature.OnEvent(context.Background(), models.AppMentionEvent{
			Channel:  "C1",
			Text:     "<@UBOT> ping",
			ThreadTS: "1700000000.000100",
		}, set)

		require.Len(t, set.Actions(), 1)
		assert.Equal(t, models.PostMessageBody{Channel: "C1", Text: "pong", ThreadTS: "1700000000.000100"}, set.Actions()[0].Body)
	})

	tests := []struct {
		name  string
		event models.Event
	}{
		{name: "different command", event: models.AppMentionEvent{Channel: "C1", Text: "<@UBOT> increment"}},
		{name: "too many words", event: models.AppMentionEvent{Channel: "C1", Text: "<@UBOT> ping now"}},
		{name: "plain message", event: models.MessageEvent{Channel: "C1", Text: "<@UBOT> ping"}},
		{name: "unknown event", event: models.UnknownEvent{Type: "reaction_added"}},
	}

	for _, tt := range tests {
		t.Run("still signals ready on "+tt.name, func(t *testing.T) {
			set := actions.NewActionSet(httptest.NewRecorder(), 1)

			feature.OnEvent(context.Background(), tt.event, set)

			assert.Equal(t, actions.StateFlushed, set.State())
			assert.Empty(t, set.Actions())
		})
	}
}
