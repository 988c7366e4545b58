//go:build !windows

package latency

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureKill puts the tool in its own process group so a timeout kills
// any children it spawned as well.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
