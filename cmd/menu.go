package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/formatter"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/tasks"
	"github.com/urfave/cli/v3"
)

// menuRows fetches both documents and resolves every course of the editable window.
func (r *Runner) menuRows(ctx context.Context, s store.Store, window []dates.Entry) ([]formatter.Row, error) {
	menuSnap, err := s.Get(ctx, models.DailyMenuKey)
	if err != nil {
		return nil, err
	}
	settingsSnap, err := s.Get(ctx, models.SettingsKey)
	if err != nil {
		return nil, err
	}

	menu := models.DecodeDailyMenu(menuSnap.Data)
	settings := models.ResolveSettings(settingsSnap.Data)
	return formatter.Rows(window, menu, settings), nil
}

func (r *Runner) window() ([]dates.Entry, error) {
	loc, locale, err := r.locale()
	if err != nil {
		return nil, err
	}
	return dates.Window(r.clock.Now(), loc, locale), nil
}

// MenuShow prints the resolved menu of the editable window, or of one date in it.
func (r *Runner) MenuShow(ctx context.Context, cmd *cli.Command) error {
	window, err := r.window()
	if err != nil {
		return err
	}
	if id := cmd.String("date"); id != "" {
		entry, ok := dates.Find(window, id)
		if !ok {
			return fmt.Errorf("%w: %s is outside the editable window", shared.ErrInvalidDate, id)
		}
		window = []dates.Entry{entry}
	}

	remote, err := r.remote(cmd, false)
	if err != nil {
		return err
	}
	rows, err := r.menuRows(ctx, remote, window)
	if err != nil {
		return err
	}

	data, err := formatter.Export(rows, cmd.String("format"))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// MenuExport writes the resolved menu of the editable window to a file.
func (r *Runner) MenuExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	window, err := r.window()
	if err != nil {
		return err
	}
	remote, err := r.remote(cmd, false)
	if err != nil {
		return err
	}
	rows, err := r.menuRows(ctx, remote, window)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(rows, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("menu exported", "path", path, "format", format, "days", len(rows))
	return r.writePlain("✓ Exported %d days to %s\n", len(rows), path)
}

// MenuSet overrides one course of one date. An empty text stores an empty override,
// which the display and editor treat as "use the fallback dish".
func (r *Runner) MenuSet(ctx context.Context, cmd *cli.Command) error {
	course, err := models.ParseCourse(cmd.StringArg("course"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	text := cmd.StringArg("text")

	window, err := r.window()
	if err != nil {
		return err
	}
	id := cmd.String("date")
	if id == "" {
		id = window[0].ID
	}
	entry, ok := dates.Find(window, id)
	if !ok {
		return fmt.Errorf("%w: %s is outside the editable window", shared.ErrInvalidDate, id)
	}

	remote, err := r.remote(cmd, true)
	if err != nil {
		return err
	}
	snap, err := remote.Apply(ctx, models.DailyMenuKey, models.DishPatch(entry.ID, course, text))
	if err != nil {
		return err
	}

	r.logger.Debug("dish written", "date", entry.ID, "course", course, "version", snap.Version)
	if text == "" {
		return r.writePlain("✓ %s, %s: cleared, showing the default dish\n", entry.FullLabel, course.Title())
	}
	return r.writePlain("✓ %s, %s: %s\n", entry.FullLabel, course.Title(), text)
}

// MenuImport writes the days and settings of a JSON file through the server.
func (r *Runner) MenuImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	file, err := tasks.ParseImport(data)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if !cmd.Bool("any-date") {
		if opts.Window, err = r.window(); err != nil {
			return err
		}
	}

	remote, err := r.remote(cmd, true)
	if err != nil {
		return err
	}
	importer := tasks.NewImporter(remote, r.logger)

	r.logger.Info("starting import", "path", path, "days", len(file.DailyMenu), "settings", len(file.Settings))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Validate:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.ApplyDays:
				r.writePlain("   %s\n", update.Message)
			case tasks.ApplySettings:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := importer.Import(ctx, progressCh, file, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Days written: %d/%d\n", result.Applied, result.TotalDays)
	if result.SettingsApplied {
		r.writePlain("Settings written (version %d)\n", result.SettingsVersion)
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed to write %d days:\n", result.Failed)
		for _, day := range result.Days {
			if day.Error != nil {
				r.writePlain("  - %s: %v\n", day.Date, day.Error)
			}
		}
		return fmt.Errorf("%w: %d of %d days failed", shared.ErrStoreWrite, result.Failed, result.TotalDays)
	}
	return nil
}
