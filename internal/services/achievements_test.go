package services

import (
	"context"
	"testing"
)

func TestAchievementUnlockIsIdempotent(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	engine := NewAchievementEngine(store, pub)
	ctx := context.Background()

	first, err := engine.Unlock(ctx, "alice", "7-Day Streak", d("2024-01-07"))
	if err != nil || !first {
		t.Fatalf("first Unlock = %v, %v", first, err)
	}
	second, err := engine.Unlock(ctx, "alice", "7-Day Streak", d("2024-01-08"))
	if err != nil || second {
		t.Fatalf("second Unlock = %v, %v", second, err)
	}

	list, err := engine.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Date.String() != "2024-01-07" {
		t.Errorf("achievements = %+v, want one dated 2024-01-07", list)
	}
	if types := pub.types(); len(types) != 1 || types[0] != "achievement.unlocked" {
		t.Errorf("events = %v, want a single achievement.unlocked", types)
	}
}
