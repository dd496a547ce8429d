package dev

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/vango-dev/ssg/internal/errors"
)

// stopTimeout is how long the bundler gets to exit after an interrupt.
const stopTimeout = 5 * time.Second

// BundlerConfig configures the bundler process.
type BundlerConfig struct {
	// Command is the program and arguments to run.
	Command []string

	// Dir is the working directory.
	Dir string

	// Env are additional environment variables.
	Env []string

	// Output receives the bundler's stdout and stderr, each line prefixed
	// with "[bundler] ". Default os.Stderr.
	Output io.Writer
}

// bundlerProcess is one run of the bundler. done is closed when it exits.
type bundlerProcess struct {
	cmd   *exec.Cmd
	group *procGroup
	done  chan struct{}
	err   error
}

// Bundler runs the bundler dev server as a child process, together with
// any processes it spawns.
type Bundler struct {
	config BundlerConfig
	mu     sync.Mutex
	proc   *bundlerProcess
}

// NewBundler creates a bundler process manager.
func NewBundler(config BundlerConfig) *Bundler {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	return &Bundler{config: config}
}

// Start runs the bundler, replacing a running instance. It is a no-op
// without a command.
func (b *Bundler) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.config.Command) == 0 {
		return nil
	}
	b.stopLocked()

	name := b.config.Command[0]
	cmd := exec.CommandContext(ctx, name, b.config.Command[1:]...)
	cmd.Dir = b.config.Dir
	cmd.Env = append(append(os.Environ(), "SSG_DEV=1"), b.config.Env...)
	out := &prefixWriter{w: b.config.Output, prefix: []byte("[bundler] ")}
	cmd.Stdout = out
	cmd.Stderr = out

	group := newProcGroup(cmd)
	if err := cmd.Start(); err != nil {
		group.release()
		return errors.New("E701").WithDetail("could not start " + name).Wrap(err)
	}
	group.started(cmd.Process.Pid)

	p := &bundlerProcess{cmd: cmd, group: group, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		out.Flush()
		group.release()
		close(p.done)
	}()
	b.proc = p
	return nil
}

// Stop interrupts the bundler and its children, killing them if they are
// still alive after stopTimeout.
func (b *Bundler) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Bundler) stopLocked() {
	p := b.proc
	if p == nil {
		return
	}
	b.proc = nil

	select {
	case <-p.done:
		return
	default:
	}
	p.group.interrupt()
	select {
	case <-p.done:
	case <-time.After(stopTimeout):
		p.group.kill()
		<-p.done
	}
}

// Restart stops the current process and starts a new one.
func (b *Bundler) Restart(ctx context.Context) error {
	b.Stop()
	return b.Start(ctx)
}

// IsRunning reports whether the bundler process is alive.
func (b *Bundler) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.proc == nil {
		return false
	}
	select {
	case <-b.proc.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the running bundler exits and returns its exit error.
// It returns nil at once when nothing is running.
func (b *Bundler) Wait() error {
	b.mu.Lock()
	p := b.proc
	b.mu.Unlock()
	if p == nil {
		return nil
	}
	<-p.done
	return p.err
}

// prefixWriter prefixes every complete line written to it. A trailing
// partial line is held until it is completed or flushed.
type prefixWriter struct {
	mu     sync.Mutex
	w      io.Writer
	prefix []byte
	buf    []byte
}

func (p *prefixWriter) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		if err := p.writeLine(p.buf[:i+1]); err != nil {
			return len(data), err
		}
		p.buf = p.buf[i+1:]
	}
	return len(data), nil
}

// Flush writes a pending partial line.
func (p *prefixWriter) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) > 0 {
		_ = p.writeLine(append(p.buf, '\n'))
		p.buf = nil
	}
}

func (p *prefixWriter) writeLine(line []byte) error {
	out := make([]byte, 0, len(p.prefix)+len(line))
	out = append(append(out, p.prefix...), line...)
	_, err := p.w.Write(out)
	return err
}
