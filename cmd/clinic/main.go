// Command clinic is the terminal client of the campus clinic system.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/certs"
	"github.com/harrylevesque/campusclinic/internal/config"
	"github.com/harrylevesque/campusclinic/internal/device"
	"github.com/harrylevesque/campusclinic/internal/logging"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/render"
	"github.com/harrylevesque/campusclinic/internal/session"
)

// Annotation keys that tie a command to a route and the access it needs.
const (
	annRoute  = "route"
	annAccess = "access"
)

// app is the state shared by every command of one invocation.
type app struct {
	// flags
	cfgPath string
	apiURL  string
	output  string
	verbose bool

	out        io.Writer
	lines      *bufio.Reader
	httpClient *http.Client
	now        func() time.Time

	cfg     *config.Config
	logger  *zap.Logger
	store   *session.Store
	sess    session.Session
	client  *api.Client
	printer render.Printer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code. hc, when
// set, replaces the HTTP client used to reach the backend.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, hc *http.Client) int {
	a := &app{out: out, httpClient: hc, now: time.Now}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		if a.logger != nil {
			a.logger.Debug("command failed", zap.Error(err))
		}
		fmt.Fprintln(errOut, render.Error(alert(err)))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clinic",
		Short: "Campus clinic client",
		Long: `clinic talks to the campus clinic backend: announcements, events,
appointment and leave requests, medical records, stock and notifications.

Log in first with "clinic login". What you can do depends on your role.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "config file (default $CLINIC_HOME/config.yaml)")
	f.StringVar(&a.apiURL, "api-url", "", "clinic backend base URL (overrides config)")
	f.StringVarP(&a.output, "output", "o", "", "output format: table or json")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.registerCmd(),
		a.whoamiCmd(),
		a.homeCmd(),
		a.menuCmd(),
		a.announcementsCmd(),
		a.eventsCmd(),
		a.stockCmd(),
		a.requestsCmd(),
		a.scheduleCmd(),
		a.profileCmd(),
		a.recordsCmd(),
		a.notificationsCmd(),
		a.usersCmd(),
		a.configCmd(),
	)
	return root
}

// gate tags cmd with the route and access level it needs.
func gate(cmd *cobra.Command, r nav.Route, need nav.Level) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[annRoute] = string(r)
	cmd.Annotations[annAccess] = need.String()
	return cmd
}

func levelOf(s string) nav.Level {
	switch s {
	case "manage":
		return nav.Manage
	case "read":
		return nav.Read
	}
	return nav.None
}

// setup loads config, logging, the session and the API client, then checks
// the command's route against the signed-in role.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.output != "" {
		cfg.Display.Output = a.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = logging.New(cfg.Logging, cfg.LogFile(), a.verbose); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.printer = render.Printer{
		Out:           a.out,
		Format:        render.Format(cfg.Display.Output),
		MarkdownStyle: cfg.Display.MarkdownStyle,
	}

	if err := a.openSession(); err != nil {
		return err
	}
	if err := a.newClient(); err != nil {
		return err
	}

	route, ok := cmd.Annotations[annRoute]
	if !ok {
		return nil
	}
	role := models.Role("")
	if a.sess.LoggedIn() {
		role = a.sess.Role
	}
	return nav.Authorize(role, nav.Route(route), levelOf(cmd.Annotations[annAccess]))
}

func (a *app) openSession() error {
	master, err := session.LoadOrCreateKey(a.cfg.SessionKeyFile())
	if err != nil {
		return err
	}
	fp, err := device.Fingerprint()
	if err != nil {
		return err
	}
	key, err := session.DeriveKey(master, fp)
	if err != nil {
		return err
	}
	dir := a.cfg.SessionDir()
	if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if a.store, err = session.Open(dir, key, session.WithLogger(a.logger)); err != nil {
		return err
	}
	if a.sess, err = a.store.Load(); err != nil {
		return err
	}
	a.logger.Debug("session loaded",
		zap.Bool("logged_in", a.sess.LoggedIn()),
		zap.String("role", string(a.sess.Role)))
	return nil
}

func (a *app) newClient() error {
	opts := []api.Option{api.WithLogger(a.logger), api.WithTokenSource(a.store)}
	if a.httpClient != nil {
		opts = append(opts, api.WithHTTPClient(a.httpClient))
	}
	opts = append(opts, api.WithTimeout(a.cfg.GetTimeout()))
	if dir := a.cfg.CADir(); dir != "" {
		pool, expired, err := certs.NewCertManager(dir).Pool(a.now())
		if err != nil {
			return err
		}
		for _, c := range expired {
			a.logger.Warn("skipping expired CA certificate",
				zap.String("subject", c.Subject.String()),
				zap.Time("not_after", c.NotAfter))
		}
		opts = append(opts, api.WithRootCAs(pool))
	}
	c, err := api.New(a.cfg.API.BaseURL, opts...)
	if err != nil {
		return err
	}
	a.client = c
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing session store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// userError is shown to the user exactly as written.
type userError string

func (e userError) Error() string { return string(e) }

// alert turns err into the one message shown to the user.
func alert(err error) string {
	var ue userError
	if errors.As(err, &ue) {
		return string(ue)
	}
	switch {
	case errors.Is(err, nav.ErrNotLoggedIn):
		return `You are not logged in. Run "clinic login" first.`
	case errors.Is(err, nav.ErrForbidden):
		return "Your account does not have access to that."
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return "Error: " + err.Error()
	}
	switch apiErr.Kind {
	case api.KindNetwork:
		return "Could not reach the clinic server. Check your connection and api.base_url."
	case api.KindAuth:
		return `Your session has expired. Please log in again with "clinic login".`
	case api.KindForbidden:
		return "You do not have permission to do that."
	case api.KindNotFound:
		return "Not found. It may have been deleted."
	case api.KindValidation:
		msg := "Please check your input"
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		if len(apiErr.Fields) > 0 {
			msg += "\n  " + api.FormatFields(apiErr.Fields)
		}
		return msg
	}
	if apiErr.Status != 0 {
		return fmt.Sprintf("The clinic server failed (%d). Try again later.", apiErr.Status)
	}
	return "The clinic server failed: " + apiErr.Message
}
