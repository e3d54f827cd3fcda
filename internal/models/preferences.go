package models

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Week start values.
const (
	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"
)

// View modes.
const (
	ViewDaily   = "daily"
	ViewWeekly  = "weekly"
	ViewMonthly = "monthly"
)

// Notifications holds the notification preference flags. Times are 24-hour
// HH:MM strings; there is no delivery mechanism behind them.
type Notifications struct {
	Enabled     bool   `json:"enabled"`
	MorningTime string `json:"morningTime" validate:"required,clock"`
	EveningTime string `json:"eveningTime" validate:"required,clock"`
}

// Preferences is the singleton per-installation settings record.
type Preferences struct {
	Theme            string        `json:"theme" validate:"required,oneof=light dark system"`
	WeeklyStartDay   string        `json:"weeklyStartDay" validate:"required,oneof=monday sunday"`
	Notifications    Notifications `json:"notifications"`
	DefaultView      string        `json:"defaultView" validate:"required,oneof=daily weekly monthly"`
	ShowQuotes       bool          `json:"showMotivationalQuotes"`
	VibrationEnabled bool          `json:"vibrationEnabled"`
	SoundEnabled     bool          `json:"soundEnabled"`
}

// DefaultPreferences returns the preferences seeded on first run.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:          ThemeSystem,
		WeeklyStartDay: WeekStartMonday,
		Notifications: Notifications{
			Enabled:     false,
			MorningTime: "08:00",
			EveningTime: "20:00",
		},
		DefaultView:      ViewDaily,
		ShowQuotes:       true,
		VibrationEnabled: true,
		SoundEnabled:     true,
	}
}

// PreferencesUpdate carries a partial preferences mutation.
type PreferencesUpdate struct {
	Theme            *string        `json:"theme,omitempty"`
	WeeklyStartDay   *string        `json:"weeklyStartDay,omitempty"`
	Notifications    *Notifications `json:"notifications,omitempty"`
	DefaultView      *string        `json:"defaultView,omitempty"`
	ShowQuotes       *bool          `json:"showMotivationalQuotes,omitempty"`
	VibrationEnabled *bool          `json:"vibrationEnabled,omitempty"`
	SoundEnabled     *bool          `json:"soundEnabled,omitempty"`
}

// Apply merges the update into the preferences.
func (u PreferencesUpdate) Apply(p Preferences) Preferences {
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.WeeklyStartDay != nil {
		p.WeeklyStartDay = *u.WeeklyStartDay
	}
	if u.Notifications != nil {
		p.Notifications = *u.Notifications
	}
	if u.DefaultView != nil {
		p.DefaultView = *u.DefaultView
	}
	if u.ShowQuotes != nil {
		p.ShowQuotes = *u.ShowQuotes
	}
	if u.VibrationEnabled != nil {
		p.VibrationEnabled = *u.VibrationEnabled
	}
	if u.SoundEnabled != nil {
		p.SoundEnabled = *u.SoundEnabled
	}
	return p
}
