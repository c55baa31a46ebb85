package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/menuboard/internal/display"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/ui"
	"github.com/desertthunder/menuboard/internal/view"
	"github.com/urfave/cli/v3"
)

// DisplayTUI renders today's menu full screen in the terminal, following live changes.
func (r *Runner) DisplayTUI(ctx context.Context, cmd *cli.Command) error {
	logPath := shared.ExpandHome(cmd.String("log"))
	logger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return err
	}
	if err := shared.ApplyLogLevel(logger, r.config.Log.Level); err != nil {
		return err
	}
	r.SetLogger(logger)

	loc, _, err := r.locale()
	if err != nil {
		return err
	}
	remote, err := r.remote(cmd, false)
	if err != nil {
		return err
	}

	var cache display.SettingsCache = display.NopCache{}
	if path := r.config.Display.CachePath; path != "" {
		cache = display.NewFileCache(shared.ExpandHome(path))
	}

	logger.Info("starting terminal display", "server", r.serverURL(cmd))
	m := ui.NewModel(display.Config{
		Subscriber: remote,
		Clock:      r.clock,
		Location:   loc,
		Cache:      cache,
		Logger:     logger,
		Scale:      view.Full,
	})
	defer m.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal display: %w", err)
	}
	return nil
}

// DisplayOpen opens the web display of the server in the default browser.
func (r *Runner) DisplayOpen(ctx context.Context, cmd *cli.Command) error {
	url := r.serverURL(cmd) + "/display"
	r.logger.Info("opening display", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		r.writePlain("Open %s in a browser\n", url)
		return err
	}
	return nil
}
