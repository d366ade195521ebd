package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("app_mention decodes into AppMentionEvent", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"app_mention","user":"U1","text":"<@UBOT> ping","ts":"1.2","channel":"C1","thread_ts":"1.0"}`)

		event, err := ParseEvent(raw)
		require.NoError(t, err)

		mention, ok := event.(AppMentionEvent)
		require.True(t, ok, "expected AppMentionEvent, got %T", event)
		assert.Equal(t, "U1", mention.User)
		assert.Equal(t, "C1", mention.GetChannel())
		assert.Equal(t, "<@UBOT> ping", mention.GetText())
		assert.Equal(t, "1.2", mention.TS)
		assert.Equal(t, "1.0", mention.ThreadTS)
		assert.Equal(t, EventTypeAppMention, mention.GetType())
	})

	t.Run("message decodes into MessageEvent", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"message","user":"U2","text":"hello","ts":"3.4","channel":"D1","channel_type":"im"}`)

		event, err := ParseEvent(raw)
		require.NoError(t, err)

		message, ok := event.(MessageEvent)
		require.True(t, ok, "expected MessageEvent, got %T", event)
		assert.Equal(t, "D1", message.GetChannel())
		assert.Equal(t, "im", message.ChannelType)
		assert.Equal(t, "hello", message.GetText())
		assert.Equal(t, EventTypeMessage, message.GetType())
	})

	t.Run("unrecognized type falls back to UnknownEvent", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"reaction_added","user":"U3","reaction":"thumbsup"}`)

		event, err := ParseEvent(raw)
		require.NoError(t, err)

		unknown, ok := event.(UnknownEvent)
		require.True(t, ok, "expected UnknownEvent, got %T", event)
		assert.Equal(t, "reaction_added", unknown.GetType())
		assert.Empty(t, unknown.GetText())
		assert.JSONEq(t, string(raw), string(unknown.Raw))
	})

	t.Run("object valued channel is ignored", func(t *testing.T) {
		raw := json.RawMessage(`{"type":"channel_created","channel":{"id":"C9","name":"general"}}`)

		event, err := ParseEvent(raw)
		require.NoError(t, err)
		assert.Empty(t, event.GetChannel())
	})

	t.Run("malformed JSON returns error", func(t *testing.T) {
		_, err := ParseEvent(json.RawMessage(`{"type":`))
		assert.Error(t, err)
	})
}

func TestActionsResponse_JSON(t *testing.T) {
	response := ActionsResponse{Actions: []Action{
		{Method: MethodChatPostMessage, Body: PostMessageBody{Channel: "C1", Text: "pong"}},
		{Method: MethodChatPostMessage, Body: PostMessageBody{Channel: "C1", Text: 0}},
	}}

	encoded, err := json.Marshal(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actions":[
		{"method":"chat.postMessage","body":{"channel":"C1","text":"pong"}},
		{"method":"chat.postMessage","body":{"channel":"C1","text":0}}
	]}`, string(encoded))
}
