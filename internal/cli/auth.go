package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/duynhne/loaner-service/internal/session"
)

func (a *app) loginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The password is taken from
--password, then ` + EnvPassword + `, then prompted for.

Examples:
  loanerctl login --email admin@example.com
  ` + EnvPassword + `=secret loanerctl login --email admin@example.com`,
		Args: cobra.NoArgs,
		RunE: a.guard(areaPublic, func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				p, err := readPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}

			s, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, session.ErrInvalidCredentials) {
					return errors.New("invalid email or password")
				}
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(out(cmd), "Signed in as %s (%s), session ends %s\n",
				s.User.Email, s.User.Role, s.ExpiresAt.Add(-session.DefaultGracePeriod).Local().Format(time.DateTime))
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		p, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(p), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("empty password")
	}
	return line, nil
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: a.guard(areaPublic, func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Fprintln(out(cmd), "Signed out")
			return nil
		}),
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: a.guard(areaProtected, func(cmd *cobra.Command, args []string) error {
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			s := a.session.Session()
			view := struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				Email     string `json:"email"`
				Role      string `json:"role"`
				ExpiresAt string `json:"expiresAt,omitempty"`
			}{ID: me.ID, Name: me.Name, Email: me.Email, Role: string(me.Role)}
			if s != nil {
				view.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
			}

			if a.output == "json" {
				return a.render(cmd, view, nil)
			}
			fmt.Fprintf(out(cmd), "%s <%s>\nrole: %s\nid: %s\n", view.Name, view.Email, view.Role, view.ID)
			if view.ExpiresAt != "" {
				fmt.Fprintf(out(cmd), "token expires: %s\n", view.ExpiresAt)
			}
			return nil
		}),
	}
}
