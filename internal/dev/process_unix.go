//go:build !windows

package dev

import (
	"os/exec"
	"syscall"
)

// procGroup runs the bundler in its own process group so that signals
// reach the processes it spawns.
type procGroup struct {
	cmd *exec.Cmd
}

func newProcGroup(cmd *exec.Cmd) *procGroup {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return &procGroup{cmd: cmd}
}

func (g *procGroup) started(int) {}

func (g *procGroup) interrupt() { g.signal(syscall.SIGTERM) }

func (g *procGroup) kill() { g.signal(syscall.SIGKILL) }

func (g *procGroup) release() {}

func (g *procGroup) signal(sig syscall.Signal) {
	if g.cmd.Process == nil {
		return
	}
	if pgid, err := syscall.Getpgid(g.cmd.Process.Pid); err == nil {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	_ = g.cmd.Process.Signal(sig)
}
