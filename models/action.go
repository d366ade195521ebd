package models

const MethodChatPostMessage = "chat.postMessage"

// Action is one Slack Web API call, e.g. chat.postMessage, to be executed
// on behalf of the bot. Body is the JSON payload for that method.
type Action struct {
	Method string `json:"method"`
	Body   any    `json:"body"`
}

type ActionsResponse struct {
	Actions []Action `json:"actions"`
}

// PostMessageBody is the body of a chat.postMessage action. Text is left
// untyped because some features reply with a bare number.
type PostMessageBody struct {
	Channel  string `json:"channel"`
	Text     any    `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}
