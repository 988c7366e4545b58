package latency

import "os/exec"

// configureKill kills the tool when its context is done.
func configureKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}
