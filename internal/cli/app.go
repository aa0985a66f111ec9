package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/fsrkeeper/internal/auth"
	"github.com/dmitrijs2005/fsrkeeper/internal/config"
	"github.com/dmitrijs2005/fsrkeeper/internal/filex"
	"github.com/dmitrijs2005/fsrkeeper/internal/logging"
	"github.com/dmitrijs2005/fsrkeeper/internal/reports"
)

var errNotSignedIn = errors.New("sign in first")
var errNoOpenReport = errors.New("open a report first")

type App struct {
	log     logging.Logger
	svc     *auth.Service
	session *auth.Session
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	newRepo func(s *auth.Session) reports.Repository
	repo    reports.Repository
	current *reports.Report
}

// NewApp opens the configured backend and prepares an App reading commands
// from stdin.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logPath := cfg.LogPath()
	if logPath != "" {
		if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
			return nil, err
		}
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: logPath})

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "error opening storage", "backend", cfg.Backend, "error", err)
		return nil, err
	}

	svc, err := auth.NewService(backend,
		auth.WithLogger(logger),
		auth.WithThrottle(auth.NewThrottle(cfg.MaxAttempts, cfg.LockoutDuration)),
	)
	if err != nil {
		_ = closeBackend()
		return nil, err
	}

	a := newApp(svc, bufio.NewReader(os.Stdin), os.Stdout, logger)
	a.closers = append(a.closers, closeBackend)
	return a, nil
}

func newApp(svc *auth.Service, reader *bufio.Reader, out io.Writer, logger logging.Logger) *App {
	return &App{
		log:     logger,
		svc:     svc,
		session: auth.NewSession(svc),
		reader:  reader,
		out:     out,
		newRepo: func(s *auth.Session) reports.Repository {
			return reports.NewRepository(s.ScopedStorage())
		},
	}
}

// Run restores the session and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	a.afterSessionChange()

	a.printf("fsr terminal client (type 'help' for commands)\n")
	if u, ok := a.session.CurrentUser(); ok {
		a.printf("Welcome back, %s\n", u.Name)
	}

	runREPL(ctx, a, a.getStatus, &readerLines{r: a.reader})
	return nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "error closing resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Status() == auth.StatusReady
}

// afterSessionChange keeps the repository in step with the session: one
// exists exactly while the session is ready.
func (a *App) afterSessionChange() {
	if a.isLoggedIn() {
		a.repo = a.newRepo(a.session)
		return
	}
	a.repo = nil
	a.current = nil
}

func (a *App) getStatus() string {
	s := string(a.session.Status())
	if u, ok := a.session.CurrentUser(); ok {
		s = u.Email + " " + s
	}
	if a.current != nil {
		s += " | " + a.current.Title
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints err for the user and returns it.
func (a *App) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	a.printf("%s\n", userMessage(err))
	if auth.Kind(err) == "internal" || auth.Kind(err) == "environment" {
		a.log.Error(ctx, "command failed", "error", err)
	}
	return err
}

func (a *App) requireSignedIn() error {
	if !a.isLoggedIn() || a.repo == nil {
		return errNotSignedIn
	}
	return nil
}

func (a *App) requireReport() error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	if a.current == nil {
		return errNoOpenReport
	}
	return nil
}
