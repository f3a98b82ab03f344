package resolve

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

//go:embed bridge.py
var bridgeScript string

const (
	opConnect         = "connect"
	opAddItems        = "add_items"
	opCurrentTimeline = "current_timeline"
	opCreateTimeline  = "create_timeline"
	opAppend          = "append"
)

type request struct {
	ID    uint64   `json:"id"`
	Op    string   `json:"op"`
	Paths []string `json:"paths,omitempty"`
	Clips []string `json:"clips,omitempty"`
	Name  string   `json:"name,omitempty"`
}

type response struct {
	ID       uint64   `json:"id"`
	OK       bool     `json:"ok"`
	Code     string   `json:"code,omitempty"`
	Error    string   `json:"error,omitempty"`
	Clips    []string `json:"clips,omitempty"`
	Timeline string   `json:"timeline,omitempty"`
	Found    bool     `json:"found,omitempty"`
	Project  string   `json:"project,omitempty"`
}

func (r response) err() error {
	if r.OK {
		return nil
	}
	var sentinel error
	switch r.Code {
	case "unavailable":
		sentinel = ErrHostUnavailable
	case "no_project":
		sentinel = ErrNoProject
	case "rejected":
		sentinel = ErrRejected
	default:
		sentinel = ErrBridge
	}
	return fmt.Errorf("%w: %s", sentinel, r.Error)
}

// client speaks newline-delimited JSON with one bridge process. It is not
// safe for concurrent use.
type client struct {
	enc     *json.Encoder
	dec     *json.Decoder
	close   func() error
	timeout time.Duration
	nextID  uint64
	broken  bool
}

func newClient(r io.Reader, w io.Writer, closeFn func() error, timeout time.Duration) *client {
	return &client{
		enc:     json.NewEncoder(w),
		dec:     json.NewDecoder(bufio.NewReader(r)),
		close:   closeFn,
		timeout: timeout,
	}
}

type result struct {
	resp response
	err  error
}

// call sends req and waits for the reply with the same id. When the reply does
// not arrive in time the peer is closed and the client is unusable afterwards.
func (c *client) call(ctx context.Context, req request) (response, error) {
	if c.broken {
		return response{}, fmt.Errorf("%w: bridge is not running", ErrHostUnavailable)
	}
	c.nextID++
	req.ID = c.nextID

	done := make(chan result, 1)
	go func() {
		if err := c.enc.Encode(req); err != nil {
			done <- result{err: err}
			return
		}
		for {
			var resp response
			if err := c.dec.Decode(&resp); err != nil {
				done <- result{err: err}
				return
			}
			if resp.ID == req.ID {
				done <- result{resp: resp}
				return
			}
			slog.Debug("Skipping stale bridge reply", "id", resp.ID, "want", req.ID)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case r := <-done:
		if r.err != nil {
			c.shutdown()
			return response{}, fmt.Errorf("%w: bridge %s: %v", ErrHostUnavailable, req.Op, r.err)
		}
		return r.resp, r.resp.err()
	case <-ctx.Done():
		c.shutdown()
		return response{}, fmt.Errorf("%w: bridge %s: %w", ErrHostUnavailable, req.Op, ctx.Err())
	}
}

func (c *client) shutdown() {
	if c.broken {
		return
	}
	c.broken = true
	if c.close != nil {
		if err := c.close(); err != nil {
			slog.Debug("Error closing bridge", "error", err)
		}
	}
}

// Bridge runs the Resolve scripting module in a python subprocess and
// implements Host on top of it. Connect (re)starts the process.
type Bridge struct {
	python      string
	modulesPath string
	timeout     time.Duration

	mu     sync.Mutex
	client *client
	start  func() (*client, error)
}

// NewBridge creates a bridge that will run python with the modules found in
// modulesPath, or the platform default when it is empty.
func NewBridge(python, modulesPath string, timeout time.Duration) *Bridge {
	if modulesPath == "" {
		modulesPath = DefaultModulesPath()
	}
	b := &Bridge{
		python:      python,
		modulesPath: modulesPath,
		timeout:     timeout,
	}
	b.start = b.spawn
	return b
}

func (b *Bridge) spawn() (*client, error) {
	cmd := exec.Command(b.python, "-u", "-c", bridgeScript)
	cmd.Env = append(os.Environ(), scriptEnv(runtime.GOOS, b.modulesPath, os.Getenv)...)
	cmd.Stderr = &stderrLogger{}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bridge stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open bridge stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", ErrHostUnavailable, b.python, err)
	}
	slog.Debug("Started Resolve bridge", "python", b.python, "pid", cmd.Process.Pid, "modules", b.modulesPath)

	closeFn := func() error {
		stdin.Close()
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		// The reader goroutine may still be draining stdout; after Kill both end promptly
		if err := cmd.Wait(); err != nil {
			slog.Debug("Resolve bridge exited", "pid", cmd.Process.Pid, "error", err)
		}
		return nil
	}
	return newClient(stdout, stdin, closeFn, b.timeout), nil
}

func (b *Bridge) call(ctx context.Context, req request) (response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return response{}, fmt.Errorf("%w: bridge is not running", ErrHostUnavailable)
	}
	return b.client.call(ctx, req)
}

// Connect restarts the bridge and binds it to the current project.
func (b *Bridge) Connect(ctx context.Context) (string, error) {
	b.mu.Lock()
	if b.client != nil {
		b.client.shutdown()
		b.client = nil
	}
	c, err := b.start()
	if err != nil {
		b.mu.Unlock()
		return "", err
	}
	b.client = c
	b.mu.Unlock()

	resp, err := b.call(ctx, request{Op: opConnect})
	if err != nil {
		return "", err
	}
	return resp.Project, nil
}

func (b *Bridge) AddItemListToMediaPool(ctx context.Context, paths []string) ([]string, error) {
	resp, err := b.call(ctx, request{Op: opAddItems, Paths: paths})
	if err != nil {
		return nil, err
	}
	return resp.Clips, nil
}

func (b *Bridge) CurrentTimeline(ctx context.Context) (string, bool, error) {
	resp, err := b.call(ctx, request{Op: opCurrentTimeline})
	if err != nil {
		return "", false, err
	}
	return resp.Timeline, resp.Found, nil
}

func (b *Bridge) CreateTimelineFromClips(ctx context.Context, name string, clips []string) (string, error) {
	resp, err := b.call(ctx, request{Op: opCreateTimeline, Name: name, Clips: clips})
	if err != nil {
		return "", err
	}
	return resp.Timeline, nil
}

func (b *Bridge) AppendToTimeline(ctx context.Context, clips []string) error {
	_, err := b.call(ctx, request{Op: opAppend, Clips: clips})
	return err
}

// Close stops the bridge process.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		b.client.shutdown()
		b.client = nil
	}
	return nil
}

// stderrLogger forwards the bridge's stderr to the debug log line by line.
type stderrLogger struct {
	buf strings.Builder
}

func (l *stderrLogger) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		s := l.buf.String()
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(s[:i]); line != "" {
			slog.Debug("Resolve bridge", "stderr", line)
		}
		l.buf.Reset()
		l.buf.WriteString(s[i+1:])
	}
	return len(p), nil
}
