package ping

import (
	"context"
	"log"

	"alphatron/actions"
	"alphatron/models"
	"alphatron/utils"
)

const (
	Name    = "ping"
	keyword = "ping"
	reply   = "pong"
)

// Feature replies "pong" to a mention of the form "@bot ping".
type Feature struct{}

func NewFeature() *Feature {
	return &Feature{}
}

func (f *Feature) Name() string {
	return Name
}

func (f *Feature) OnEvent(_ context.Context, event models.Event, actionSet *actions.ActionSet) {
	mention, ok := event.(models.AppMentionEvent)
	if !ok || !utils.DetectKeywordCommand(mention.Text, keyword) {
		actionSet.Ready()
		return
	}

	log.Printf("🏓 Replying to ping in channel %s", mention.Channel)
	actionSet.Add(models.MethodChatPostMessage, models.PostMessageBody{
		Channel:  mention.Channel,
		Text:     reply,
		ThreadTS: mention.ThreadTS,
	}).Ready()
}
