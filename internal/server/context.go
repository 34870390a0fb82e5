package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/auth"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/calendar"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/gmail"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/instrumentation"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/logging"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tasks"
)

// shutdownTimeout bounds how long each account's credential manager may take
// to shut down before the emergency path is used.
const shutdownTimeout = 10 * time.Second

// Account bundles the credential machinery for one Google account: the
// lifecycle manager that owns the token file, the notifier that routes silent
// refreshes back to it, and the provider the API clients read tokens from.
type Account struct {
	Manager  *auth.Manager
	Notifier *google.TokenNotifier
	Provider *google.ManagerTokenProvider
}

// ServerContext holds the shared state of the MCP server.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	logger  logging.Logger
	metrics *instrumentation.Metrics
	conf    *oauth2.Config

	mu              sync.Mutex
	accounts        map[string]*Account
	calendarClients map[string]*calendar.Client
	tasksClients    map[string]*tasks.Client
	gmailClients    map[string]*gmail.Client
	shutdown        bool
}

// NewServerContext creates a new server context. metrics may be nil.
func NewServerContext(ctx context.Context, logger logging.Logger, metrics *instrumentation.Metrics) *ServerContext {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:             serverCtx,
		cancel:          cancel,
		logger:          logger,
		metrics:         metrics,
		conf:            google.OAuthConfig(),
		accounts:        make(map[string]*Account),
		calendarClients: make(map[string]*calendar.Client),
		tasksClients:    make(map[string]*tasks.Client),
		gmailClients:    make(map[string]*gmail.Client),
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AccountFor returns the credential machinery for the named account, creating
// and caching it on first use.
func (sc *ServerContext) AccountFor(account string) (*Account, error) {
	if account == "" {
		account = "default"
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if acct, ok := sc.accounts[account]; ok {
		return acct, nil
	}
	if sc.shutdown {
		return nil, auth.ErrShuttingDown
	}

	path, err := google.TokenPath(account)
	if err != nil {
		return nil, fmt.Errorf("resolving token path for account %s: %w", account, err)
	}

	notifier := &google.TokenNotifier{}
	manager := auth.NewManager(auth.Options{
		Path:      path,
		Refresher: google.NewRefresher(sc.conf),
		Notifier:  notifier,
		Logger:    sc.logger,
	})
	acct := &Account{
		Manager:  manager,
		Notifier: notifier,
		Provider: google.NewManagerTokenProvider(manager, sc.conf, notifier),
	}
	sc.accounts[account] = acct
	return acct, nil
}

// HasCredentials reports whether stored credentials exist for the account.
func (sc *ServerContext) HasCredentials(account string) bool {
	acct, err := sc.AccountFor(account)
	if err != nil {
		return false
	}
	return acct.Provider.HasToken()
}

// CalendarClientForAccount returns the Calendar client for an account,
// creating and caching it on first use.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	if account == "" {
		account = "default"
	}
	acct, err := sc.AccountFor(account)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.calendarClients[account]; ok {
		return client, nil
	}

	client, err := calendar.NewClient(sc.ctx, account, acct.Provider)
	if err != nil {
		return nil, err
	}
	sc.calendarClients[account] = client
	return client, nil
}

// TasksClientForAccount returns the Tasks client for an account, creating and
// caching it on first use.
func (sc *ServerContext) TasksClientForAccount(account string) (*tasks.Client, error) {
	if account == "" {
		account = "default"
	}
	acct, err := sc.AccountFor(account)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.tasksClients[account]; ok {
		return client, nil
	}

	client, err := tasks.NewClient(sc.ctx, account, acct.Provider)
	if err != nil {
		return nil, err
	}
	sc.tasksClients[account] = client
	return client, nil
}

// GmailClientForAccount returns the Gmail client for an account, creating and
// caching it on first use.
func (sc *ServerContext) GmailClientForAccount(account string) (*gmail.Client, error) {
	if account == "" {
		account = "default"
	}
	acct, err := sc.AccountFor(account)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.gmailClients[account]; ok {
		return client, nil
	}

	client, err := gmail.NewClient(sc.ctx, account, acct.Provider)
	if err != nil {
		return nil, err
	}
	sc.gmailClients[account] = client
	return client, nil
}

// DropClients discards the cached API clients for an account so they are
// rebuilt on next use. Called after re-authentication or Clear.
func (sc *ServerContext) DropClients(account string) {
	if account == "" {
		account = "default"
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.calendarClients, account)
	delete(sc.tasksClients, account)
	delete(sc.gmailClients, account)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown shuts down every account's credential manager gracefully, falling
// back to the emergency path when the graceful sequence fails or times out.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	accounts := make([]*Account, 0, len(sc.accounts))
	for _, acct := range sc.accounts {
		accounts = append(accounts, acct)
	}
	sc.mu.Unlock()

	for _, acct := range accounts {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := acct.Manager.BeginShutdown(ctx)
		cancel()
		if err != nil {
			sc.logger.Error("graceful credential shutdown failed, using emergency path",
				"error", err.Error())
			acct.Manager.EmergencyShutdown()
		}
	}

	sc.cancel()
	return nil
}
