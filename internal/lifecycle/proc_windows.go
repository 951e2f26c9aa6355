//go:build windows

package lifecycle

import (
	"os"
	"os/exec"
	"syscall"
)

// processAlive checks for a live process. On Windows FindProcess fails
// for a dead PID, which is exactly the signal we need.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = process.Release()
	return true
}

const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// setDaemonSysProcAttr detaches the spawned daemon from our console.
func setDaemonSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewProcessGroup | detachedProcess,
	}
}
