package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/app"
	"plagdesk/internal/config"
	"plagdesk/internal/domain/session"
)

// errNotLoggedIn is returned by commands that need a session when none is held.
var errNotLoggedIn = errors.New("not logged in: run `plagctl login`")

// errSessionExpired replaces a 401 from the API. The store is already cleared.
var errSessionExpired = errors.New("session expired: run `plagctl login`")

// cli carries the flags and the runtime opened for one invocation.
type cli struct {
	configPath string
	apiURL     string
	dbPath     string
	verbose    bool
	plain      bool

	app *app.App
}

// execute runs one invocation with the given arguments and streams.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{}
	defer c.close()
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

// rootCmd builds the command tree over c's flag state.
func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plagctl",
		Short: "Command-line client for the plagiarism checker",
		Long: `plagctl talks to the plagiarism API with the same session the web UI uses.

Log in once; the token is kept in the local database until you log out or the
server rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $PLAGDESK_CONFIG)")
	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "API base URL (overrides config)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "local database path (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&c.plain, "plain", false, "Plain output without the interactive progress view")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.checkCmd(),
		c.uploadCmd(),
		c.dashboardCmd(),
		c.historyCmd(),
		c.showCmd(),
		c.deleteCmd(),
		c.reportCmd(),
	)
	return root
}

// open loads config, applies flag overrides and performs the one credential read.
func (c *cli) open(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.APIBaseURL = c.apiURL
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	} else if os.Getenv("PLAGDESK_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	slog.SetDefault(cfg.NewLogger())

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a.Session.Initialize(ctx)
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// requireSession is the command-line route guard.
func (c *cli) requireSession() error {
	if session.Evaluate(c.app.Session.Snapshot()) != session.GuardAuthorized {
		return errNotLoggedIn
	}
	return nil
}

// explain turns a lost session into the login hint and leaves other errors alone.
func explain(err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return errSessionExpired
	}
	return err
}

// readSecret returns flagValue, or one line read from in when it is empty.
func readSecret(in *bufio.Reader, out io.Writer, prompt, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
