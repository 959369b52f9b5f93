// Package cli implements the panelctl command-line driving adapter.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/panelctl/internal/application"
	"github.com/ericfisherdev/panelctl/internal/datefmt"
	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// ErrReported means the failure has already been shown to the user.
var ErrReported = errors.New("error already reported")

// App holds what the commands need. Every field is required.
type App struct {
	Session *application.Session
	Errors  *application.ErrorHandler
	Panel   driven.PanelClient
	Dates   *datefmt.Formatter
}

// NewRootCommand builds the panelctl command tree.
func NewRootCommand(app *App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "panelctl",
		Short:         "Command-line client for the p-manager panel",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignInCommand(app),
		newSignOutCommand(app),
		newSessionCommand(app),
		newProfileCommand(app),
		newUsersCommand(app),
		newStatsCommand(app),
	)
	return root
}

// report routes a panel failure through the error handler. Other errors are
// returned unchanged for the caller to print.
func (a *App) report(ctx context.Context, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		a.Errors.Handle(ctx, apiErr.Response, nil)
		return ErrReported
	}
	return err
}

// reportSignIn is report for the sign-in command, where a 401 means the
// credentials were rejected.
func (a *App) reportSignIn(ctx context.Context, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		a.Errors.HandleSignIn(ctx, apiErr.Response, nil)
		return ErrReported
	}
	return err
}

// keyHelp is appended to commands that touch the credential store.
const keyHelp = `The credential is stored encrypted. Set PANELCTL_SECRET_KEY (64 hex
characters) or PANELCTL_PASSPHRASE before running this command.`

func newSignInCommand(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Sign in and store the panel credential",
		Long:  "Sign in to the panel and store the returned bearer credential.\n\n" + keyHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if password == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = line
			}

			token, err := app.Panel.SignIn(ctx, username, password)
			if err != nil {
				return app.reportSignIn(ctx, err)
			}
			if err := app.Session.Start(ctx, token); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "panel username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "panel password (read from stdin when empty)")
	return cmd
}

func newSignOutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "sign-out",
		Aliases: []string{"exit", "logout"},
		Short:   "Forget the stored credential",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Session.Terminate(cmd.Context())
		},
	}
}

func newSessionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show whether a credential is stored",
		Long:  "Show whether a panel credential is stored and when it was saved.\n\n" + keyHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := app.Session.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cred == nil {
				_, _ = fmt.Fprintln(out, "Signed out")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Signed in (credential stored %s)\n", app.Dates.TS2String(cred.UpdatedAt.UnixMilli()))
			return nil
		},
	}
}

func newProfileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <identity>",
		Short: "Show a proxy user's profile and connection URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := app.Panel.Profile(ctx, args[0])
			if err != nil {
				return app.report(ctx, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "Name:\t%s\n", p.User.Name)
			_, _ = fmt.Fprintf(tw, "Identity:\t%s\n", p.User.Identity)
			_, _ = fmt.Fprintf(tw, "Enabled:\t%s\n", strconv.FormatBool(p.User.Enabled))
			_, _ = fmt.Fprintf(tw, "Usage:\t%s GB of %s GB\n",
				humanize.FtoaWithDigits(p.User.Usage, 2),
				humanize.FtoaWithDigits(p.User.Quota, 2),
			)
			_, _ = fmt.Fprintf(tw, "Usage reset:\t%s\n", app.Dates.TS2String(p.User.UsageResetAt))
			for _, link := range []struct{ label, url string }{
				{"Reverse", p.SsReverse},
				{"Relay", p.SsRelay},
				{"Direct", p.SsDirect},
			} {
				if link.url != "" {
					_, _ = fmt.Fprintf(tw, "%s:\t%s\n", link.label, link.url)
				}
			}
			return tw.Flush()
		},
	}
}

func newUsersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List proxy users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			users, err := app.Panel.Users(ctx)
			if err != nil {
				return app.report(ctx, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tENABLED\tUSAGE\tQUOTA (GB)\tCREATED\tRESET")
			for _, u := range users {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID,
					u.Name,
					strconv.FormatBool(u.Enabled),
					humanize.Bytes(uint64(max(u.UsageBytes, 0))),
					humanize.FtoaWithDigits(u.Quota, 2),
					app.Dates.TS2String(u.CreatedAt),
					app.Dates.TS2String(u.UsageResetAt),
				)
			}
			return tw.Flush()
		},
	}
}

func newStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show panel traffic totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := app.Panel.Stats(ctx)
			if err != nil {
				return app.report(ctx, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"Inbound:  %s\nOutbound: %s\nFreedom:  %s\nUsers:    %d\nSince:    %s\n",
				humanize.Bytes(uint64(max(s.Inbound, 0))),
				humanize.Bytes(uint64(max(s.Outbound, 0))),
				humanize.Bytes(uint64(max(s.Freedom, 0))),
				s.UsersCount,
				app.Dates.TS2String(s.UpdatedAt),
			)
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
