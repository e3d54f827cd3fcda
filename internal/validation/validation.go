// Package validation enforces the schema constraints on habits, completions,
// and preferences before any state mutation takes place.
package validation

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/habitkit/habitkit/internal/constants"
	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// hexRGB is the strict 6-digit hex color pattern. Shorthand 3-digit colors
// are rejected on purpose.
var hexRGB = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func initValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
			return hexRGB.MatchString(fl.Field().String())
		})
		validate.RegisterValidation("calday", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(constants.DateFormat, fl.Field().String())
			return err == nil
		})
		validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(constants.TimeFormat, fl.Field().String())
			return err == nil
		})
	})
}

// messages maps a field+tag pair to a user-facing message. Anything not
// listed falls back to a generic "is invalid".
var messages = map[string]string{
	"Name.required":                      "name is required",
	"Name.max":                           "name too long",
	"Description.max":                    "description too long",
	"Color.required":                     "color is required",
	"Color.hexrgb":                       "invalid color format",
	"Icon.required":                      "icon is required",
	"Goal.gte":                           "goal must be at least 1",
	"Goal.lte":                           "goal cannot exceed 7",
	"Category.max":                       "category too long",
	"Tags.max":                           "maximum 5 tags allowed",
	"Tags[].max":                         "tag too long",
	"HabitID.required":                   "habit reference is required",
	"Day.required":                       "date is required",
	"Day.calday":                         "date must be YYYY-MM-DD",
	"Value.gte":                          "value must be at least 0",
	"Value.lte":                          "value cannot exceed 100",
	"Notes.max":                          "notes too long",
	"Theme.oneof":                        "theme must be light, dark, or system",
	"WeeklyStartDay.oneof":               "week must start monday or sunday",
	"DefaultView.oneof":                  "view must be daily, weekly, or monthly",
	"Notifications.MorningTime.clock":    "morning time must be HH:MM",
	"Notifications.EveningTime.clock":    "evening time must be HH:MM",
	"Notifications.MorningTime.required": "morning time is required",
	"Notifications.EveningTime.required": "evening time is required",
}

// Habit validates a habit entity against the schema constraints.
func Habit(h models.Habit) error {
	initValidator()
	return wrap(validate.Struct(h))
}

// Completion validates a completion entity against the schema constraints.
func Completion(c models.Completion) error {
	initValidator()
	return wrap(validate.Struct(c))
}

// Preferences validates the preferences record.
func Preferences(p models.Preferences) error {
	initValidator()
	return wrap(validate.Struct(p))
}

// Day validates a standalone YYYY-MM-DD string.
func Day(day string) error {
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return &apperr.ValidationError{Fields: map[string]string{"date": "date must be YYYY-MM-DD"}}
	}
	return nil
}

// wrap converts validator errors into the application's ValidationError.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// Drop the leading struct name from the namespace so keys read
		// "Notifications.MorningTime" rather than
		// "Preferences.Notifications.MorningTime".
		ns := fe.StructNamespace()
		if idx := strings.IndexByte(ns, '.'); idx >= 0 {
			ns = ns[idx+1:]
		}
		ns = normalizeIndexes(ns)
		msg, found := messages[ns+"."+fe.Tag()]
		if !found {
			msg = "is invalid"
		}
		fields[ns] = msg
	}
	return &apperr.ValidationError{Fields: fields}
}

// normalizeIndexes collapses slice indexes ("Tags[2]") to a generic form
// ("Tags[]") so per-element failures share one message.
func normalizeIndexes(ns string) string {
	out := make([]byte, 0, len(ns))
	for i := 0; i < len(ns); i++ {
		out = append(out, ns[i])
		if ns[i] == '[' {
			for i+1 < len(ns) && ns[i+1] != ']' {
				i++
			}
		}
	}
	return string(out)
}
