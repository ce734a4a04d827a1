// tenderctl drives the console API from the terminal: session lifecycle,
// auction listings, analytics reports and export downloads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/tenderops/console-gateway/internal/client"
	"github.com/tenderops/console-gateway/internal/console"
	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "tenderctl",
		Usage: "operate the tender admin console from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "auth-url",
				Usage:   "auth backend base URL",
				Sources: cli.EnvVars("CONSOLE_BACKENDS_AUTH_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "data backend base URL",
				Sources: cli.EnvVars("CONSOLE_BACKENDS_DATA_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "recording-url",
				Usage:   "recording backend base URL",
				Sources: cli.EnvVars("CONSOLE_BACKENDS_RECORDING_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: "path to the stored session (default: XDG config dir)",
			},
			&cli.BoolFlag{
				Name:  "use-keychain",
				Usage: "store the session in the macOS keychain instead of a file",
			},
			&cli.IntFlag{
				Name:    "max-auth-retries",
				Value:   3,
				Usage:   "refresh-and-retry cycles per request",
				Sources: cli.EnvVars("CONSOLE_SESSION_MAX_AUTH_RETRIES"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level (trace..error)",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			meCommand(),
			auctionsCommand(),
			analyticsCommand(),
			exportCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildConsole(cmd *cli.Command) (*console.Console, error) {
	apiURL := cmd.String("api-url")
	if apiURL == "" {
		return nil, fmt.Errorf("--api-url (or CONSOLE_BACKENDS_DATA_BASE_URL) is required")
	}

	log := logger.New("development", cmd.String("log-level"))

	store, err := buildStore(cmd, log)
	if err != nil {
		return nil, err
	}

	api := client.New(client.Config{
		BaseURL:     apiURL,
		AuthBaseURL: cmd.String("auth-url"),
		Timeout:     30 * time.Second,
		MaxRetries:  cmd.Int("max-auth-retries"),
	}, store, log)

	return console.New(api, console.Config{
		RecordingBaseURL: cmd.String("recording-url"),
	}, log), nil
}

func buildStore(cmd *cli.Command, log zerolog.Logger) (credentials.Store, error) {
	if cmd.Bool("use-keychain") {
		return credentials.NewKeychainStoreWithLogger(log), nil
	}
	path := cmd.String("session-file")
	if path == "" {
		path = credentials.DefaultSessionPath()
	}
	if path == "" {
		return nil, fmt.Errorf("could not resolve a session file path, pass --session-file")
	}
	return credentials.NewFileStore(path), nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "authenticate and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := buildConsole(cmd)
			if err != nil {
				return err
			}
			if err := c.Login(ctx, cmd.String("email"), cmd.String("password")); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "end the session and clear stored credentials",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := buildConsole(cmd)
			if err != nil {
				return err
			}
			if err := c.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func meCommand() *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "show the authenticated operator",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := buildConsole(cmd)
			if err != nil {
				return err
			}
			user, err := c.Me(ctx)
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
}

func auctionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "auctions",
		Usage: "list auction chats",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "page-size", Value: 20},
			&cli.StringFlag{Name: "search"},
			&cli.StringFlag{Name: "status"},
			&cli.StringFlag{Name: "event-type"},
			&cli.StringFlag{Name: "region"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := buildConsole(cmd)
			if err != nil {
				return err
			}
			page, err := c.Auctions(ctx, console.AuctionListParams{
				Page:      cmd.Int("page"),
				PageSize:  cmd.Int("page-size"),
				Search:    cmd.String("search"),
				Status:    cmd.String("status"),
				EventType: cmd.String("event-type"),
				Region:    cmd.String("region"),
			})
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
}

func analyticsCommand() *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "show the tender summary report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "aggregation", Value: "week", Usage: "day, week or month"},
			&cli.StringFlag{Name: "start", Usage: "start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "end date (YYYY-MM-DD)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := buildConsole(cmd)
			if err != nil {
				return err
			}
			report, err := c.Analytics(ctx, console.AnalyticsParams{
				Aggregation: cmd.String("aggregation"),
				StartDate:   cmd.String("start"),
				EndDate:     cmd.String("end"),
			})
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "download auction exports",
		Commands: []*cli.Command{
			{
				Name:      "recordings",
				Usage:     "list recording artifacts for an auction chat",
				ArgsUsage: "<chat-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slug := cmd.Args().First()
					if slug == "" {
						return fmt.Errorf("chat id argument is required")
					}
					c, err := buildConsole(cmd)
					if err != nil {
						return err
					}
					artifacts, err := c.RecordingExports(ctx, slug)
					if err != nil {
						return err
					}
					return printJSON(artifacts)
				},
			},
			{
				Name:      "protocol",
				Usage:     "download the technical protocol document",
				ArgsUsage: "<chat-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output path (default: attachment filename)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slug := cmd.Args().First()
					if slug == "" {
						return fmt.Errorf("chat id argument is required")
					}
					c, err := buildConsole(cmd)
					if err != nil {
						return err
					}
					doc, err := c.TechProtocolExport(ctx, slug)
					if err != nil {
						return err
					}
					path := cmd.String("output")
					if path == "" {
						path = doc.Filename
					}
					if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}
					fmt.Printf("Wrote %s (%d bytes)\n", path, len(doc.Data))
					return nil
				},
			},
		},
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
