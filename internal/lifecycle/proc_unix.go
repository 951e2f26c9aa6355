//go:build !windows

package lifecycle

import (
	"os"
	"os/exec"
	"syscall"
)

// processAlive checks for a live process with signal 0.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// setDaemonSysProcAttr detaches the spawned daemon from our session so it
// survives the short-lived client process.
func setDaemonSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
