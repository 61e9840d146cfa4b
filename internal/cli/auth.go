package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storefront/internal/session"
)

// errPasswordRequired is returned when no password was given by flag or stdin.
var errPasswordRequired = errors.New("password is required")

func newRegisterCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account on the bookstore API",
		Long:  "Create an account. The password is read from --password or, when that is\nempty, from the first line of standard input.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		pw, err := readPassword(password, cmd.InOrStdin())
		if err != nil {
			return err
		}
		msg, err := a.client.Register(ctx, args[0], pw)
		if err != nil {
			return fmt.Errorf("register %s: %w", args[0], err)
		}
		if msg == "" {
			msg = "Registered " + args[0]
		}
		return a.emit(map[string]string{"username": args[0], "message": msg}, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, msg)
			return err
		})
	})
	return cmd
}

func newLoginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and keep the credential for later commands",
		Long:  "Log in. The password is read from --password or, when that is empty, from\nthe first line of standard input. The returned credential is stored in the\ndata directory and sent with every later request.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		pw, err := readPassword(password, cmd.InOrStdin())
		if err != nil {
			return err
		}
		token, err := a.client.Login(ctx, args[0], pw)
		if err != nil {
			return fmt.Errorf("login %s: %w", args[0], err)
		}
		if err := a.session.Set(ctx, token); err != nil {
			return exitError(exitSysError, err)
		}
		return a.emit(map[string]any{"username": args[0], "authenticated": true}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Logged in as %s\n", args[0])
			return err
		})
	})
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			was := a.session.Authenticated()
			if err := a.session.Clear(ctx); err != nil {
				return exitError(exitSysError, err)
			}
			return a.emit(map[string]any{"authenticated": false}, func(w io.Writer) error {
				if !was {
					_, err := fmt.Fprintln(w, "Not logged in")
					return err
				}
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		}),
	}
}

// statusView is the JSON form of the status command.
type statusView struct {
	Authenticated bool       `json:"authenticated"`
	APIURL        string     `json:"api_url"`
	DataDir       string     `json:"data_dir"`
	Subject       string     `json:"subject,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API address and who is logged in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			view := statusView{
				Authenticated: a.session.Authenticated(),
				APIURL:        a.client.BaseURL(),
				DataDir:       a.cfg.DataDir,
			}
			var claimsErr error
			if view.Authenticated {
				claims, err := a.session.Claims()
				if err != nil && !errors.Is(err, session.ErrNoCredential) {
					claimsErr = err
				}
				view.Subject = claims.Subject
				if !claims.IssuedAt.IsZero() {
					view.IssuedAt = &claims.IssuedAt
				}
				if !claims.ExpiresAt.IsZero() {
					view.ExpiresAt = &claims.ExpiresAt
				}
				view.Expired = claims.Expired(time.Now())
			}
			return a.emit(view, func(w io.Writer) error {
				fmt.Fprintf(w, "API:  %s\nData: %s\n", view.APIURL, view.DataDir)
				switch {
				case !view.Authenticated:
					fmt.Fprintln(w, "Not logged in")
				case claimsErr != nil:
					fmt.Fprintln(w, "Logged in (credential is not a readable token)")
				default:
					fmt.Fprintf(w, "Logged in as %s\n", view.Subject)
					if view.ExpiresAt != nil {
						state := "expires"
						if view.Expired {
							state = "expired"
						}
						fmt.Fprintf(w, "Credential %s %s\n", state, view.ExpiresAt.Format(time.RFC3339))
					}
				}
				return nil
			})
		}),
	}
}

// readPassword returns flag when set, otherwise the first line of in.
func readPassword(flag string, in io.Reader) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errPasswordRequired
	}
	return pw, nil
}
