package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/core"
	applog "finledger/internal/log"
)

// AchievementEngine unlocks named badges at most once per namespace.
// Deciding when a badge is earned is up to the caller.
type AchievementEngine struct {
	store     AchievementStore
	publisher EventPublisher
}

func NewAchievementEngine(store AchievementStore, publisher EventPublisher) *AchievementEngine {
	return &AchievementEngine{store: store, publisher: publisher}
}

// Unlock records the achievement dated today unless it already exists.
// It reports whether this call unlocked it.
func (e *AchievementEngine) Unlock(ctx context.Context, username, name string, today core.Date) (bool, error) {
	unlocked, err := e.store.UnlockAchievementIfAbsent(ctx, username, name, today)
	if err != nil {
		return false, fmt.Errorf("unlock %q: %w", name, err)
	}
	if !unlocked {
		return false, nil
	}

	slog.InfoContext(ctx, "Achievement unlocked", applog.FieldUser, username, applog.FieldAchievement, name)
	publish(ctx, e.publisher, amqp.NewAchievementEvent(username, name))
	return true, nil
}

// List returns the unlocked achievements, oldest first.
func (e *AchievementEngine) List(ctx context.Context, username string) ([]core.Achievement, error) {
	list, err := e.store.ListAchievements(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return list, nil
}
