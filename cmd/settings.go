package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/menuboard/internal/admin"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// LoadTimeout bounds how long settings show waits for the first snapshots.
var LoadTimeout = 10 * time.Second

// SettingsShow subscribes an editor to the server and prints the resolved settings once both
// documents have arrived.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	loc, locale, err := r.locale()
	if err != nil {
		return err
	}
	remote, err := r.remote(cmd, false)
	if err != nil {
		return err
	}

	loaded := make(chan struct{}, 1)
	var editor *admin.Editor
	editor = admin.NewEditor(admin.Config{
		Store:    remote,
		Clock:    r.clock,
		Location: loc,
		Locale:   locale,
		Logger:   r.logger,
		OnChange: func() {
			if editor != nil && editor.Loaded() {
				select {
				case loaded <- struct{}{}:
				default:
				}
			}
		},
	})
	editor.Open()
	defer editor.Close()

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()
	select {
	case <-loaded:
	case <-ctx.Done():
		return fmt.Errorf("%w: no snapshot from %s", shared.ErrServiceUnavailable, r.serverURL(cmd))
	}

	settings := editor.Settings()
	if cmd.Bool("json") {
		return r.writeJSON(settings.Document(), true)
	}

	opacity := models.OpacityLevels[settings.OpacityLevel].Label
	r.writePlainHeader("Display Settings")
	r.writePlain("Theme:      %s\n", settings.Theme)
	r.writePlain("Background: %s (%s)\n", models.BackgroundName(settings.BackgroundImage), settings.BackgroundImage)
	r.writePlain("Font:       %s (%s)\n", settings.Font().Name, settings.FontFamily)
	r.writePlain("Font size:  %s\n", settings.FontSize)
	r.writePlain("Opacity:    %s (level %d)\n", opacity, settings.OpacityLevel)

	today := editor.Selected()
	r.writePlain("\nDefault dishes (today: %s)\n", today.FullLabel)
	for _, c := range models.Courses() {
		marker := " "
		if editor.UsesFallback(c) {
			marker = "*"
		}
		fallback := settings.Fallback(c)
		if fallback == "" {
			fallback = "(none)"
		}
		r.writePlain(" %s %-10s %s\n", marker, c.Title()+":", fallback)
	}
	r.writePlain("\n* shown on the display today\n")
	return nil
}

// SettingsSet validates and writes one settings field.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	field, err := models.ParseSettingField(cmd.StringArg("field"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidSetting, err)
	}
	value, err := models.ParseSettingValue(field, cmd.StringArg("value"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidSetting, err)
	}

	remote, err := r.remote(cmd, true)
	if err != nil {
		return err
	}
	snap, err := remote.Apply(ctx, models.SettingsKey, models.Document{string(field): value})
	if err != nil {
		return err
	}

	r.logger.Debug("setting written", "field", field, "version", snap.Version)
	return r.writePlain("✓ %s = %v\n", field, value)
}
