// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Server URL (default: saved session, then server.base_url)",
	}
}

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the menu board web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "assets",
				Usage: "Directory with background images and fonts (overrides assets.dir)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// userCommand manages local admin credentials
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage kitchen staff accounts for the local provider",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create an account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password (prompted when omitted)",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:  "passwd",
				Usage: "Change the password of an account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "New password (prompted when omitted)",
					},
				},
				Action: r.UserPasswd,
			},
			{
				Name:  "remove",
				Usage: "Delete an account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Action: r.UserRemove,
			},
			{
				Name:   "list",
				Usage:  "List accounts",
				Action: r.UserList,
			},
		},
	}
}

// authCommand handles the CLI session with a server
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the CLI session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and save the session token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Revoke and forget the saved session",
				Flags:  []cli.Flag{serverFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check server health and the saved session",
				Flags:  []cli.Flag{serverFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// menuCommand handles daily menu operations
func menuCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "Daily menu operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the resolved menu of the editable window",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Only this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: txt, json, csv, markdown",
						Value:   "txt",
					},
				},
				Action: r.MenuShow,
			},
			{
				Name:  "export",
				Usage: "Write the resolved menu of the editable window to a file",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: menu_{date}.{ext})",
					},
				},
				Action: r.MenuExport,
			},
			{
				Name:  "set",
				Usage: "Set one course of one date; an empty text falls back to the default",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "course"},
					&cli.StringArg{Name: "text"},
				},
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Date (YYYY-MM-DD, default: today)",
					},
				},
				Action: r.MenuSet,
			},
			{
				Name:  "import",
				Usage: "Import days and settings from a JSON file (comments allowed)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					serverFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Writes per second",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "any-date",
						Usage: "Allow dates outside the editable window",
					},
				},
				Action: r.MenuImport,
			},
		},
	}
}

// settingsCommand handles display settings operations
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Display settings and fallback dishes",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the resolved settings",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SettingsShow,
			},
			{
				Name:  "set",
				Usage: "Set one field: theme, backgroundImage, fontFamily, fontSize, opacityLevel, starter, main, dessert",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "field"},
					&cli.StringArg{Name: "value"},
				},
				Flags:  []cli.Flag{serverFlag()},
				Action: r.SettingsSet,
			},
		},
	}
}

// displayCommand returns the display commands.
func displayCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "display",
		Usage: "Show the menu board",
		Commands: []*cli.Command{
			{
				Name:    "tui",
				Aliases: []string{"terminal"},
				Usage:   "Render today's menu in the terminal",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.StringFlag{
						Name:  "log",
						Usage: "Log file path",
						Value: "~/.menuboard/display.log",
					},
				},
				Action: r.DisplayTUI,
			},
			{
				Name:   "open",
				Usage:  "Open the web display in a browser",
				Flags:  []cli.Flag{serverFlag()},
				Action: r.DisplayOpen,
			},
		},
	}
}
