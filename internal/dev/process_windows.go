//go:build windows

package dev

import (
	"os/exec"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// procGroup ties the bundler and the processes it spawns to a job object
// that kills them all when closed.
type procGroup struct {
	cmd  *exec.Cmd
	once sync.Once
	job  windows.Handle
}

func newProcGroup(cmd *exec.Cmd) *procGroup {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
	job, err := newKillOnCloseJob()
	if err != nil {
		job = 0
	}
	return &procGroup{cmd: cmd, job: job}
}

func (g *procGroup) started(pid int) {
	if g.job == 0 {
		return
	}
	h, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return
	}
	defer windows.CloseHandle(h)
	_ = windows.AssignProcessToJobObject(g.job, h)
}

// interrupt closes the job, which terminates every process in it. Windows
// has no portable SIGTERM for console process trees.
func (g *procGroup) interrupt() {
	g.release()
	if g.cmd.Process != nil {
		_ = g.cmd.Process.Kill()
	}
}

func (g *procGroup) kill() {
	if g.cmd.Process != nil {
		_ = g.cmd.Process.Kill()
	}
}

func (g *procGroup) release() {
	g.once.Do(func() {
		if g.job != 0 {
			windows.CloseHandle(g.job)
		}
	})
}

func newKillOnCloseJob() (windows.Handle, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, err
	}
	var info windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION
	info.BasicLimitInformation.LimitFlags = windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
	if _, err := windows.SetInformationJobObject(job, windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info))); err != nil {
		windows.CloseHandle(job)
		return 0, err
	}
	return job, nil
}
