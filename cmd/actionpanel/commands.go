package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/actionpanel/internal/config"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// appAction is a command body that runs against a bootstrapped app.
type appAction func(ctx context.Context, c *cli.Command, a *app) error

// withApp loads config, wires the app, waits for the stored credential to be
// read, and runs fn.
func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg, slog.LevelWarn, c.Bool("verbose"))

		a, err := newApp(ctx, cfg, newCLINavigator(os.Stderr))
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := a.Close(); closeErr != nil {
				slog.Error("error closing storage", "error", closeErr)
			}
		}()

		if err := a.session.Bootstrap(ctx); err != nil {
			return fmt.Errorf("reading stored credential: %w", err)
		}
		return fn(ctx, c, a)
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the credential",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Sources: cli.EnvVars("ACTIONPANEL_USERNAME")},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "read from stdin when omitted", Sources: cli.EnvVars("ACTIONPANEL_PASSWORD")},
		},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			password := c.String("password")
			if password == "" {
				var err error
				if password, err = readPassword(os.Stdin, os.Stderr); err != nil {
					return err
				}
			}

			res, err := a.client.Login(ctx, c.String("username"), password)
			if err != nil {
				return err
			}
			if err := a.session.Login(ctx, res.Token); err != nil {
				return err
			}

			who := res.UserEmail
			if res.UserName != "" {
				who = fmt.Sprintf("%s <%s>", res.UserName, res.UserEmail)
			}
			if who == "" {
				who = c.String("username")
			}
			fmt.Printf("signed in as %s\n", who)
			return nil
		}),
	}
}

// readPassword reads one line from r after prompting on prompt.
func readPassword(r io.Reader, prompt io.Writer) (string, error) {
	_, _ = fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored credential",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		}),
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the session state and stored credential details",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			info, err := a.session.DescribeCredential(ctx)
			if err != nil {
				return err
			}
			st := newStatusOutput(a.session.State(), info, a.storage)
			if c.Bool("json") {
				return printJSON(os.Stdout, st)
			}
			printStatus(os.Stdout, st)
			return nil
		}),
	}
}

func actionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "actions",
		Usage: "List and create action categories",
		Commands: []*cli.Command{
			actionsListCommand(),
			actionsCreateCommand(),
		},
	}
}

func actionsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List one page of action categories",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1, Usage: "1-based page number"},
			&cli.IntFlag{Name: "size", Usage: "page size; remembered for later calls (default: last used)"},
			&cli.StringFlag{Name: "search", Usage: "search term"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			if !a.session.Session().IsAuthenticated {
				return errNotSignedIn
			}

			q := model.PageQuery{
				PageNumber: c.Int("page"),
				PageSize:   c.Int("size"),
				SearchTerm: c.String("search"),
			}
			if q.PageNumber < 1 || q.PageSize < 0 {
				return errors.New("page must be at least 1 and size must not be negative")
			}
			if err := a.list.Apply(ctx, q); err != nil {
				return err
			}

			snap, err := a.list.Refetch(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(os.Stdout, newListOutput(snap))
			}
			printActions(os.Stdout, snap)
			return nil
		}),
	}
}

func actionsCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an action category",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "description", Required: true},
			&cli.StringFlag{Name: "icon", Required: true, Usage: "path to an image file"},
			&cli.StringFlag{Name: "color", Value: model.DefaultActionColor, Usage: "#RGB or #RRGGBB"},
			&cli.BoolFlag{Name: "inactive", Usage: "create the category inactive"},
		},
		Action: withApp(func(ctx context.Context, c *cli.Command, a *app) error {
			if !a.session.Session().IsAuthenticated {
				return errNotSignedIn
			}

			iconPath := c.String("icon")
			icon, err := os.ReadFile(iconPath)
			if err != nil {
				return fmt.Errorf("reading icon: %w", err)
			}

			in := model.NewAction{
				Name:        c.String("name"),
				Description: c.String("description"),
				Active:      !c.Bool("inactive"),
				Color:       c.String("color"),
				IconName:    filepath.Base(iconPath),
				Icon:        icon,
			}

			if err := a.client.CreateAction(ctx, in); err != nil {
				var verrs model.ValidationErrors
				if errors.As(err, &verrs) {
					printValidationErrors(os.Stderr, verrs)
					return errors.New("invalid action category")
				}
				return err
			}

			fmt.Printf("created %s\n", in.Name)
			return nil
		}),
	}
}

var errNotSignedIn = errors.New("not signed in: run `actionpanel login` first")
