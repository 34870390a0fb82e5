package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/logging"
)

// Phase is the monotonic shutdown phase of a Manager. It only ever advances,
// and only BeginShutdown and EmergencyShutdown write it.
type Phase int

const (
	PhaseRunning Phase = iota
	PhasePreparing
	PhaseFinalizing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePreparing:
		return "preparing"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Refresher performs the remote refresh exchange. Implementations return
// ErrReauthRequired (wrapped or bare) when the authorization server reports
// an invalid or revoked grant.
type Refresher interface {
	Refresh(ctx context.Context, cred *Credential) (*Credential, error)
}

// ChangeNotifier is the external OAuth abstraction's notification hook. The
// Manager subscribes at construction and unsubscribes when shutdown begins.
// Only a single subscriber ever exists.
type ChangeNotifier interface {
	Subscribe(fn func(*Credential))
	Unsubscribe()
}

// Options configures a Manager. Path is required; everything else has a
// sensible default.
type Options struct {
	// Path is the token file location. The Manager owns this file
	// exclusively.
	Path string

	// Refresher performs the remote refresh exchange. May be nil, in
	// which case expired credentials are simply reported as invalid.
	Refresher Refresher

	// Notifier, if set, is subscribed to at construction so that silent
	// refreshes performed by the transport layer are persisted.
	Notifier ChangeNotifier

	Logger logging.Logger

	// Now is the clock, overridable in tests.
	Now func() time.Time

	LockTimeout   time.Duration
	LockPoll      time.Duration
	ShutdownWait  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Manager owns the persisted token record and its in-memory mirror. All
// mutations of the token file go through it; API clients share read access to
// the credential via Current.
type Manager struct {
	path          string
	refresher     Refresher
	notifier      ChangeNotifier
	logger        logging.Logger
	now           func() time.Time
	shutdownWait  time.Duration
	retryAttempts int
	retryDelay    time.Duration

	locks *PathLocker
	temps *TempTracker
	ops   *Registry

	// beforeRename, when set, runs after the temp file is verified and
	// before it is renamed into place. Test seam for the commit window.
	beforeRename func()

	mu    sync.RWMutex
	cred  *Credential
	phase Phase
}

// NewManager creates a manager for the token file at opts.Path and, when a
// notifier is configured, hooks it up so externally refreshed tokens are
// persisted.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	shutdownWait := opts.ShutdownWait
	if shutdownWait <= 0 {
		shutdownWait = defaultShutdownWait
	}
	retryAttempts := opts.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = defaultRetryAttempts
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	m := &Manager{
		path:          opts.Path,
		refresher:     opts.Refresher,
		notifier:      opts.Notifier,
		logger:        logger,
		now:           now,
		shutdownWait:  shutdownWait,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		locks:         NewPathLocker(opts.LockTimeout, opts.LockPoll),
		temps:         NewTempTracker(logger),
		phase:         PhaseRunning,
	}
	m.ops = NewRegistry(func() bool { return m.Phase() == PhaseRunning }, m.temps, logger)

	if m.notifier != nil {
		m.notifier.Subscribe(m.OnTokensChanged)
	}

	return m
}

// Path returns the token file path this manager owns.
func (m *Manager) Path() string {
	return m.path
}

// Phase returns the current shutdown phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Current returns the in-memory credential, or nil if none is loaded.
// Callers must treat the returned credential as read-only; the manager
// replaces the whole object on change, never mutates it in place.
func (m *Manager) Current() *Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

func (m *Manager) setCredential(cred *Credential) {
	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()
}

// Load reads the persisted token record into memory. It returns false
// without error when the file is absent, unreadable, not valid JSON, or
// missing the access token; in the corruption cases it also best-effort
// deletes the file so a future load does not trip over the same bad state.
func (m *Manager) Load(ctx context.Context) (bool, error) {
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		return false, err
	}
	ok := m.load()
	m.ops.Finish(op, nil)
	return ok, nil
}

func (m *Manager) load() bool {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Debug("token file unreadable", "path", m.path, "error", err.Error())
		}
		return false
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		m.logger.Warn("token file is corrupt, removing it", "path", m.path, "error", err.Error())
		m.removeCorruptFile()
		return false
	}
	if cred.AccessToken == "" {
		m.logger.Warn("token file has no access token, removing it", "path", m.path)
		m.removeCorruptFile()
		return false
	}

	m.setCredential(&cred)
	return true
}

func (m *Manager) removeCorruptFile() {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to remove corrupt token file", "path", m.path, "error", err.Error())
	}
}

// Validate reports whether a usable credential is available, loading from
// disk if necessary and refreshing if the access token is near expiry.
// A false result with a nil error means re-authorization is required.
func (m *Manager) Validate(ctx context.Context) (bool, error) {
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		return false, err
	}
	defer func() { m.ops.Finish(op, nil) }()

	if m.Current() == nil {
		m.load()
	}
	if !m.Current().HasAccessToken() {
		return false, nil
	}
	return m.refreshIfNeeded(ctx, op)
}

// RefreshIfNeeded refreshes the credential when it is expired (or within the
// skew window of expiring) and a refresh token is available. It returns
// (false, nil) when the grant was rejected and interactive re-authorization
// is needed, and (false, err) for transient refresh failures worth retrying.
func (m *Manager) RefreshIfNeeded(ctx context.Context) (bool, error) {
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		return false, err
	}
	ok, rerr := m.refreshIfNeeded(ctx, op)
	m.ops.Finish(op, rerr)
	return ok, rerr
}

func (m *Manager) refreshIfNeeded(ctx context.Context, op *Operation) (bool, error) {
	cred := m.Current()
	if cred == nil || (cred.AccessToken == "" && cred.RefreshToken == "") {
		return false, nil
	}
	if !cred.ExpiredAt(m.now()) {
		return true, nil
	}
	if cred.RefreshToken == "" {
		return false, nil
	}
	if m.refresher == nil {
		return false, nil
	}

	fresh, err := m.refresher.Refresh(ctx, cred)
	if err != nil {
		if errors.Is(err, ErrReauthRequired) {
			m.logger.Info("refresh token rejected by provider, re-authorization required")
			return false, nil
		}
		return false, fmt.Errorf("refreshing credential: %w", err)
	}

	if err := m.persistMerged(ctx, op, fresh); err != nil {
		return false, fmt.Errorf("persisting refreshed credential: %w", err)
	}
	return true, nil
}

// Save durably persists cred and installs it as the in-memory credential.
// The write is atomic: serialized against other writers, staged through a
// verified temp file, and renamed into place.
func (m *Manager) Save(ctx context.Context, cred *Credential) error {
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		return err
	}
	serr := m.locks.WithLock(ctx, m.path, func() error {
		return m.writeDurable(ctx, op, cred)
	})
	m.ops.Finish(op, serr)
	return serr
}

// OnTokensChanged is the credential-change notification hook. The external
// OAuth layer calls it whenever it obtains new token material; the manager
// responds by merging the partial credential with the persisted record and
// saving the result. A no-op once shutdown has begun.
func (m *Manager) OnTokensChanged(partial *Credential) {
	if partial == nil {
		return
	}
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		m.logger.Debug("ignoring token change during shutdown")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := m.persistMerged(ctx, op, partial)
		if err != nil {
			m.logger.Error("failed to persist refreshed tokens", "error", err.Error())
		}
		m.ops.Finish(op, err)
	}()
}

// persistMerged applies the refresh-token stickiness rule: the partial
// credential is merged over the record currently on disk (falling back to the
// in-memory credential if the disk record is unreadable), keeping the
// existing refresh token when the incoming credential does not supply one.
func (m *Manager) persistMerged(ctx context.Context, op *Operation, partial *Credential) error {
	return m.locks.WithLock(ctx, m.path, func() error {
		existing := m.readRecord()
		if existing == nil {
			existing = m.Current()
		}
		return m.writeDurable(ctx, op, Merge(existing, partial))
	})
}

// readRecord reads and parses the on-disk record, returning nil on any
// failure. Used only for merging; Load is the authoritative reader.
func (m *Manager) readRecord() *Credential {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil
	}
	return &cred
}

// writeStep enumerates the durable-write state machine. The explicit steps
// keep the rename-fallback path auditable and testable in isolation.
type writeStep int

const (
	stepWriteTemp writeStep = iota
	stepVerifyTemp
	stepRename
	stepCopyContents
	stepDone
)

// writeDurable stages cred into a tracked temp file, verifies the write
// round-trips, renames it over the token file, and falls back to copying
// contents when rename is not available on the underlying filesystem. Must be
// called with the path lock held.
//
// The phase is re-checked after lock acquisition and again before the
// rename: a writer that waited out the shutdown drain must not touch the
// token file once the registry has abandoned it.
func (m *Manager) writeDurable(ctx context.Context, op *Operation, cred *Credential) error {
	if m.Phase() >= PhaseFinalizing {
		return ErrShuttingDown
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tempPath := m.temps.Create(m.path, op.ID)
	op.AddResource(tempPath)

	cleanupTemp := func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("failed to remove temp file", "path", tempPath, "error", err.Error())
		}
		m.temps.Release(tempPath)
	}

	for step := stepWriteTemp; step != stepDone; {
		switch step {
		case stepWriteTemp:
			err := Retry(ctx, m.retryAttempts, m.retryDelay, func() error {
				return os.WriteFile(tempPath, data, 0o600)
			})
			if err != nil {
				cleanupTemp()
				return fmt.Errorf("writing temp token file: %w", err)
			}
			step = stepVerifyTemp

		case stepVerifyTemp:
			if err := verifyRecord(tempPath); err != nil {
				cleanupTemp()
				return err
			}
			step = stepRename

		case stepRename:
			if m.beforeRename != nil {
				m.beforeRename()
			}
			if m.Phase() >= PhaseFinalizing {
				cleanupTemp()
				return ErrShuttingDown
			}
			err := Retry(ctx, m.retryAttempts, m.retryDelay, func() error {
				return os.Rename(tempPath, m.path)
			})
			if err != nil {
				// Rename is not atomic (or possible) on every
				// filesystem/mount combination.
				m.logger.Warn("rename failed, falling back to content copy", "error", err.Error())
				step = stepCopyContents
				continue
			}
			step = stepDone

		case stepCopyContents:
			contents, err := os.ReadFile(tempPath)
			if err != nil {
				// Temp file vanished; write the in-memory record
				// directly.
				contents = data
			}
			werr := Retry(ctx, m.retryAttempts, m.retryDelay, func() error {
				return os.WriteFile(m.path, contents, 0o600)
			})
			if werr != nil {
				cleanupTemp()
				return fmt.Errorf("writing token file: %w", werr)
			}
			cleanupTemp()
			step = stepDone
		}
	}

	m.temps.Release(tempPath)
	m.setCredential(cred)
	return nil
}

// verifyRecord re-reads a staged token file and confirms it parses to a
// record with an access token. Verification failures are never retried; a
// write that does not round-trip points at a real bug, and silently retrying
// would mask it.
func verifyRecord(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &VerifyError{Path: path, Reason: fmt.Sprintf("read back failed: %v", err)}
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return &VerifyError{Path: path, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if cred.AccessToken == "" {
		return &VerifyError{Path: path, Reason: "missing access token"}
	}
	return nil
}

// Clear best-effort deletes the token file and drops the in-memory
// credential. Deletion failures other than absence are logged, not
// surfaced: clearing is not safety-critical.
func (m *Manager) Clear(ctx context.Context) error {
	op, err := m.ops.Begin(uuid.NewString())
	if err != nil {
		return err
	}
	defer func() { m.ops.Finish(op, nil) }()

	lerr := m.locks.WithLock(ctx, m.path, func() error {
		if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("failed to delete token file", "path", m.path, "error", err.Error())
		}
		m.setCredential(nil)
		return nil
	})
	return lerr
}

// SyncSave writes the credential directly to the token file with no temp
// file, lock, or registry involvement. Only for emergency shutdown, when the
// asynchronous machinery cannot be relied on to finish: a possible partial
// write is accepted as the cost of guaranteeing some save attempt before the
// process dies.
func (m *Manager) SyncSave(cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// BeginShutdown runs the orderly shutdown sequence: stop admitting new
// operations, unhook the refresh listener, wait (bounded) for in-flight
// operations, then reclaim leftover scratch files. Invoking it again once
// shutdown has begun is a logged no-op.
func (m *Manager) BeginShutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseRunning {
		phase := m.phase
		m.mu.Unlock()
		m.logger.Debug("shutdown already in progress", "phase", phase.String())
		return nil
	}
	m.phase = PhasePreparing
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.Unsubscribe()
	}

	m.ops.WaitForAll(m.shutdownWait)

	m.mu.Lock()
	m.phase = PhaseFinalizing
	m.mu.Unlock()

	m.temps.CleanupAll()

	m.mu.Lock()
	m.phase = PhaseComplete
	m.mu.Unlock()

	m.logger.Info("credential manager shut down", "path", m.path)
	return nil
}

// EmergencyShutdown is the synchronous last resort when BeginShutdown cannot
// be awaited (lock timeout, unexpected error during normal shutdown). It
// force-advances the phase, unhooks the listener, and synchronously saves the
// in-memory credential if one is held. Safe to call repeatedly; a no-op once
// the phase is complete.
func (m *Manager) EmergencyShutdown() {
	m.mu.Lock()
	if m.phase == PhaseComplete {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseFinalizing
	cred := m.cred
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.Unsubscribe()
	}

	if cred.HasAccessToken() {
		if err := m.SyncSave(cred); err != nil {
			m.logger.Error("emergency save failed", "error", err.Error())
		}
	}

	m.mu.Lock()
	m.phase = PhaseComplete
	m.mu.Unlock()
}
