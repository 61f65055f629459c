package domain

import "time"

const (
	DefaultReminderHour   = 22
	DefaultReminderMinute = 0
)

// ReminderSettings is the per-user reminder configuration, persisted
// separately from habits. FCMToken is the one push artifact kept for a
// future server-sent reminder; delivery itself is best effort.
type ReminderSettings struct {
	UserID    string    `json:"user_id"`
	Enabled   bool      `json:"enabled"`
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	FCMToken  string    `json:"fcm_token,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderSettingsPatch carries only the fields the caller wants to
// change. Nil fields are left untouched on apply, so a save never
// destructively overwrites unrelated settings.
type ReminderSettingsPatch struct {
	Enabled  *bool
	Hour     *int
	Minute   *int
	FCMToken *string
}

func DefaultReminderSettings(userID string) *ReminderSettings {
	return &ReminderSettings{
		UserID: userID,
		Hour:   DefaultReminderHour,
		Minute: DefaultReminderMinute,
	}
}

func (s *ReminderSettings) Apply(patch ReminderSettingsPatch) error {
	if patch.Hour != nil && (*patch.Hour < 0 || *patch.Hour > 23) {
		return NewValidationError("hour", "must be between 0 and 23")
	}
	if patch.Minute != nil && (*patch.Minute < 0 || *patch.Minute > 59) {
		return NewValidationError("minute", "must be between 0 and 59")
	}

	if patch.Enabled != nil {
		s.Enabled = *patch.Enabled
	}
	if patch.Hour != nil {
		s.Hour = *patch.Hour
	}
	if patch.Minute != nil {
		s.Minute = *patch.Minute
	}
	if patch.FCMToken != nil {
		s.FCMToken = *patch.FCMToken
	}

	s.UpdatedAt = time.Now().UTC()
	return nil
}
