package increment

import (
	"context"
	"fmt"
	"log"

	"alphatron/actions"
	"alphatron/models"
	"alphatron/services"
	"alphatron/utils"
)

const (
	Name    = "increment"
	keyword = "increment"
)

type counter struct {
	Count int `json:"count"`
}

// Feature replies to "@bot increment" with the stored count, then bumps
// the count for the next mention.
type Feature struct {
	featureStates services.FeatureStatesService
	txManager     services.TransactionManager
	pool          services.TaskSubmitter
}

func NewFeature(
	featureStates services.FeatureStatesService,
	txManager services.TransactionManager,
	pool services.TaskSubmitter,
) *Feature {
	return &Feature{
		featureStates: featureStates,
		txManager:     txManager,
		pool:          pool,
	}
}

func (f *Feature) Name() string {
	return Name
}

func (f *Feature) OnEvent(ctx context.Context, event models.Event, actionSet *actions.ActionSet) {
	mention, ok := event.(models.AppMentionEvent)
	if !ok || !utils.DetectKeywordCommand(mention.Text, keyword) {
		actionSet.Ready()
		return
	}

	// The count is persisted after the response may already be written.
	ctx = context.WithoutCancel(ctx)
	f.pool.Submit(func() {
		f.respond(ctx, mention, actionSet)
	})
}

func (f *Feature) respond(ctx context.Context, mention models.AppMentionEvent, actionSet *actions.ActionSet) {
	signaled := false
	defer func() {
		// Runs on a pool worker, where an unrecovered panic ends the process.
		if rec := recover(); rec != nil {
			log.Printf("❌ Increment feature panicked in channel %s: %v", mention.Channel, rec)
		}
		if !signaled {
			actionSet.Ready()
		}
	}()

	err := f.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		current := counter{}
		if _, err := f.featureStates.GetDocumentForUpdate(ctx, Name, &current); err != nil {
			return fmt.Errorf("failed to load counter: %w", err)
		}

		actionSet.Add(models.MethodChatPostMessage, models.PostMessageBody{
			Channel:  mention.Channel,
			Text:     current.Count,
			ThreadTS: mention.ThreadTS,
		}).Ready()
		signaled = true

		next := counter{Count: current.Count + 1}
		if err := f.featureStates.SaveDocument(ctx, Name, next); err != nil {
			return fmt.Errorf("failed to save counter: %w", err)
		}

		log.Printf("🔢 Counter advanced to %d", next.Count)
		return nil
	})
	if err != nil {
		log.Printf("❌ Increment feature failed in channel %s: %v", mention.Channel, err)
	}
}
