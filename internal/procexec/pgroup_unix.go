//go:build unix

package procexec

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so a timeout kills
// everything it spawned (man pipes through a pager and formatter).
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
