package cli

import (
	"fmt"

	"github.com/habitkit/habitkit/internal/models"
)

type SettingsGetCmd struct{}

func (c *SettingsGetCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}

	p := st.Preferences()
	fmt.Println("Settings:")
	fmt.Printf("  Theme:           %s\n", p.Theme)
	fmt.Printf("  Week starts on:  %s\n", p.WeeklyStartDay)
	fmt.Printf("  Default view:    %s\n", p.DefaultView)
	fmt.Printf("  Notifications:   %s\n", onOff(p.Notifications.Enabled))
	if p.Notifications.Enabled {
		fmt.Printf("    Morning:       %s\n", p.Notifications.MorningTime)
		fmt.Printf("    Evening:       %s\n", p.Notifications.EveningTime)
	}
	fmt.Printf("  Quotes:          %s\n", onOff(p.ShowQuotes))
	fmt.Printf("  Vibration:       %s\n", onOff(p.VibrationEnabled))
	fmt.Printf("  Sound:           %s\n", onOff(p.SoundEnabled))
	return nil
}

type SettingsSetCmd struct {
	Theme     *string `help:"Color theme (light|dark|system)."`
	WeekStart *string `help:"First day of the week (monday|sunday)."`
	View      *string `help:"Default view (daily|weekly|monthly)."`
	Notify    *bool   `help:"Enable or disable notifications."`
	Morning   *string `help:"Morning notification time (HH:MM)."`
	Evening   *string `help:"Evening notification time (HH:MM)."`
	Quotes    *bool   `help:"Show motivational quotes."`
	Vibration *bool   `help:"Enable vibration."`
	Sound     *bool   `help:"Enable sound."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	st, err := ctx.openState()
	if err != nil {
		return err
	}

	update := models.PreferencesUpdate{
		Theme:            c.Theme,
		WeeklyStartDay:   c.WeekStart,
		DefaultView:      c.View,
		ShowQuotes:       c.Quotes,
		VibrationEnabled: c.Vibration,
		SoundEnabled:     c.Sound,
	}
	if c.Notify != nil || c.Morning != nil || c.Evening != nil {
		n := st.Preferences().Notifications
		if c.Notify != nil {
			n.Enabled = *c.Notify
		}
		if c.Morning != nil {
			n.MorningTime = *c.Morning
		}
		if c.Evening != nil {
			n.EveningTime = *c.Evening
		}
		update.Notifications = &n
	}

	if _, err := st.UpdatePreferences(update); err != nil {
		return err
	}
	if err := settle(st); err != nil {
		return err
	}

	fmt.Println("Settings updated.")
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
