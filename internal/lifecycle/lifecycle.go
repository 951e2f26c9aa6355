package lifecycle

import (
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"cid/internal/config"
	"cid/internal/endpoint"
	"cid/internal/logging"
	"cid/internal/paths"
	"cid/internal/protocol"
)

// pingTimeout bounds the lightweight reachability probe. Kept well under
// the query timeout: a probe is asked many times per EnsureDaemon.
const pingTimeout = 500 * time.Millisecond

// cooldown absorbs the startup race where the socket exists but the
// daemon isn't accepting yet: the lock is held this long after a
// successful start before release.
const cooldown = 300 * time.Millisecond

// Manager starts and probes the daemon for a project.
type Manager struct {
	cfg    config.Config
	logger *logging.Logger
}

// NewManager creates a lifecycle manager.
func NewManager(cfg config.Config, logger *logging.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// EnsureDaemon guarantees a reachable daemon for the project, spawning
// one if needed. It reduces every failure to false: daemon unavailability
// is a normal condition, never propagated as an error.
func (m *Manager) EnsureDaemon(projectDir string) bool {
	// Cheapest check first: a live PID record means a daemon exists
	// without costing a transport round-trip.
	if PIDAlive(projectDir) {
		return true
	}
	if Ping(projectDir) {
		return true
	}

	lock, err := AcquireLock(projectDir, m.cfg.LockStaleness)
	if err != nil {
		m.logger.Warn("lock acquisition failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	if lock == nil {
		// Another caller is starting the daemon; wait for its outcome
		// rather than spawning a duplicate.
		return m.pollAlive(projectDir, m.cfg.LockWait)
	}
	defer lock.Release()

	if err := m.spawn(projectDir); err != nil {
		m.logger.Warn("daemon spawn failed", map[string]interface{}{"error": err.Error()})
		return false
	}

	if !m.pollAlive(projectDir, m.cfg.StartTimeout) {
		return false
	}
	// Hold the lock briefly so racing callers don't reclaim it while the
	// daemon is still settling.
	time.Sleep(cooldown)
	return true
}

// pollAlive probes liveness every PollInterval until deadline.
func (m *Manager) pollAlive(projectDir string, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for {
		if PIDAlive(projectDir) || Ping(projectDir) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(m.cfg.PollInterval)
	}
}

// spawn starts the daemon as a detached process running this binary's
// daemon subcommand.
func (m *Manager) spawn(projectDir string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, "daemon", "--project", projectDir)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	setDaemonSysProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	m.logger.Info("daemon spawned", map[string]interface{}{
		"pid":     cmd.Process.Pid,
		"project": projectDir,
	})
	// The daemon outlives us; drop the handle so no zombie is left if we
	// exit first.
	return cmd.Process.Release()
}

// PIDAlive reports whether the PID record points at a live process.
// A record for a dead process reads as absent.
func PIDAlive(projectDir string) bool {
	path, err := paths.PIDPath(projectDir)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	return processAlive(pid)
}

// Ping performs a lightweight reachability check against the resolved
// endpoint: one ping query, one response, short deadline.
func Ping(projectDir string) bool {
	ep, err := endpoint.Resolve(projectDir)
	if err != nil {
		return false
	}
	conn, err := net.DialTimeout(string(ep.Network), ep.Address, pingTimeout)
	if err != nil {
		return false
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(pingTimeout))

	if err := protocol.WriteMessage(conn, protocol.NewQuery(protocol.CmdPing)); err != nil {
		return false
	}
	resp, err := protocol.NewReader(conn).ReadResponse()
	if err != nil {
		return false
	}
	return resp.Status == protocol.StatusOK
}

// WritePIDRecord writes the daemon's own PID record. Called by the daemon
// on start; clients only ever read it.
func WritePIDRecord(projectDir string) error {
	path, err := paths.PIDPath(projectDir)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// RemovePIDRecord removes the daemon's PID record on shutdown.
func RemovePIDRecord(projectDir string) error {
	path, err := paths.PIDPath(projectDir)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
