// Package cli implements the loanerctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/duynhne/loaner-service/internal/access"
	"github.com/duynhne/loaner-service/internal/client"
	"github.com/duynhne/loaner-service/internal/session"
)

// Environment fallbacks for the global flags.
const (
	EnvAPIURI    = "LOANER_API_URI"
	EnvStateFile = "LOANER_STATE_FILE"
	EnvPassword  = "LOANER_PASSWORD"

	defaultAPIURI = "http://localhost:8080"
)

var (
	// ErrNotSignedIn is returned by commands that need a session when
	// there is none.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrNotPermitted is returned when the signed-in role may not run a
	// command.
	ErrNotPermitted = errors.New("not permitted")
)

// area is the access level a command requires.
type area int

const (
	areaPublic area = iota
	areaProtected
	areaStaff
	areaAdmin
)

type app struct {
	apiURI    string
	stateFile string
	retries   int
	verbose   bool
	output    string

	logger  zerolog.Logger
	client  *client.Client
	session *session.Manager
}

// NewRootCommand builds the loanerctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "loanerctl",
		Short: "Administer the equipment loaner service",
		Long: `loanerctl signs in to a loaner service and manages its equipment,
users and bookings.

The session is kept in a local state file and ends automatically one
minute before the access token expires.

Examples:
  loanerctl login --email admin@example.com
  loanerctl equipment list --status available
  loanerctl bookings list --all
  loanerctl bookings approve <equipment-id> <booking-id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURI, "api-uri", envOr(EnvAPIURI, defaultAPIURI), "loaner service base URI (env "+EnvAPIURI+")")
	flags.StringVar(&a.stateFile, "state-file", os.Getenv(EnvStateFile), "session state file (env "+EnvStateFile+", default under the user config dir)")
	flags.IntVar(&a.retries, "retries", client.DefaultRetries, "retries for idempotent requests on network and server errors")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests and session events to stderr")
	flags.StringVarP(&a.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.equipmentCommand(),
		a.usersCommand(),
		a.bookingsCommand(),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("--output must be table or json, got %q", a.output)
	}

	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	if a.stateFile == "" {
		path, err := session.DefaultStatePath()
		if err != nil {
			return err
		}
		a.stateFile = path
	}

	c, err := client.New(a.apiURI,
		client.WithRetries(a.retries),
		client.WithLogger(a.logger.With().Str("component", "client").Logger()),
	)
	if err != nil {
		return err
	}
	m := session.NewManager(session.NewFileStore(a.stateFile), c,
		session.WithLogger(a.logger.With().Str("component", "session").Logger()),
	)
	c.SetSession(m)
	m.Initialize()

	a.client = c
	a.session = m
	return nil
}

// guard wraps run with the access gate for area.
func (a *app) guard(need area, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var d access.Decision
		switch need {
		case areaPublic:
			return run(cmd, args)
		case areaProtected:
			d = access.CanEnterProtectedArea(a.session, cmd.CommandPath())
		case areaStaff:
			d = access.CanEnterStaffArea(a.session)
		case areaAdmin:
			d = access.CanEnterAdminArea(a.session)
		}
		if err := deniedError(d); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

func deniedError(d access.Decision) error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == access.ReasonUnauthenticated:
		return fmt.Errorf("%w, run 'loanerctl login' (redirect %s)", ErrNotSignedIn, d.RedirectURL())
	default:
		return fmt.Errorf("%w (redirect %s)", ErrNotPermitted, d.RedirectURL())
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
