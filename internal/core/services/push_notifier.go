package services

import (
	"context"
	"log"
	"time"

	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/reminder"
)

// PushNotifier resolves the user's registered device token when a
// reminder fires. Actual push delivery needs a messaging backend and
// stays out of scope; the token lookup keeps the artifact exercised and
// the log line makes the firing observable.
type PushNotifier struct {
	settingsRepo domain.SettingsRepository
}

func NewPushNotifier(settingsRepo domain.SettingsRepository) *PushNotifier {
	return &PushNotifier{settingsRepo: settingsRepo}
}

func (p *PushNotifier) Notify(userID string, n reminder.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	settings, err := p.settingsRepo.Get(ctx, userID)
	if err != nil || settings.FCMToken == "" {
		log.Printf("Reminder fired for user %s (no registered device): %s", userID, n.Title)
		return
	}

	log.Printf("Reminder fired for user %s, device token registered (%s): %s: %s",
		userID, previewToken(settings.FCMToken), n.Title, n.Body)
}

func previewToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "…"
}
