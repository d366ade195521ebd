package models

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack/slackevents"
)

const (
	EventTypeAppMention = string(slackevents.AppMention)
	EventTypeMessage    = string(slackevents.Message)
)

// Event is the inner event of an Events API callback. Known event types
// decode into their own variant, everything else becomes an UnknownEvent.
type Event interface {
	GetType() string
	GetChannel() string
	GetText() string
	isEvent()
}

type AppMentionEvent struct {
	User     string `json:"user"`
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
}

func (e AppMentionEvent) GetType() string    { return EventTypeAppMention }
func (e AppMentionEvent) GetChannel() string { return e.Channel }
func (e AppMentionEvent) GetText() string    { return e.Text }
func (AppMentionEvent) isEvent()             {}

type MessageEvent struct {
	User        string `json:"user"`
	Channel     string `json:"channel"`
	ChannelType string `json:"channel_type,omitempty"`
	Text        string `json:"text"`
	TS          string `json:"ts"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	SubType     string `json:"subtype,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
}

func (e MessageEvent) GetType() string    { return EventTypeMessage }
func (e MessageEvent) GetChannel() string { return e.Channel }
func (e MessageEvent) GetText() string    { return e.Text }
func (MessageEvent) isEvent()             {}

// UnknownEvent carries an event type we have no variant for, along with
// the raw JSON so handlers can still inspect it.
type UnknownEvent struct {
	Type    string
	Channel string
	Raw     json.RawMessage
}

func (e UnknownEvent) GetType() string    { return e.Type }
func (e UnknownEvent) GetChannel() string { return e.Channel }
func (e UnknownEvent) GetText() string    { return "" }
func (UnknownEvent) isEvent()             {}

// ParseEvent decodes the inner "event" object of an event_callback.
func ParseEvent(raw json.RawMessage) (Event, error) {
	var header struct {
		Type    string `json:"type"`
		Channel any    `json:"channel"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	switch header.Type {
	case EventTypeAppMention:
		var ev slackevents.AppMentionEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse app_mention event: %w", err)
		}
		return AppMentionEvent{
			User:     ev.User,
			Channel:  ev.Channel,
			Text:     ev.Text,
			TS:       ev.TimeStamp,
			ThreadTS: ev.ThreadTimeStamp,
			BotID:    ev.BotID,
		}, nil
	case EventTypeMessage:
		var ev slackevents.MessageEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse message event: %w", err)
		}
		return MessageEvent{
			User:        ev.User,
			Channel:     ev.Channel,
			ChannelType: ev.ChannelType,
			Text:        ev.Text,
			TS:          ev.TimeStamp,
			ThreadTS:    ev.ThreadTimeStamp,
			SubType:     ev.SubType,
			BotID:       ev.BotID,
		}, nil
	default:
		// Some events (e.g. channel_created) carry an object under "channel".
		channel, _ := header.Channel.(string)
		return UnknownEvent{
			Type:    header.Type,
			Channel: channel,
			Raw:     append(json.RawMessage(nil), raw...),
		}, nil
	}
}
