//go:build !unix

package procexec

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}
