//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

var binPath = "quickmenu_e2e"

const (
	KeyEnter    = "\r"
	KeyCtrlC    = "\x03"
	KeyCtrlK    = "\x0b"
	KeyCtrlT    = "\x14"
	KeyTab      = "\t"
	KeyShiftTab = "\x1b[Z"
	KeyEsc      = "\x1b"
	KeyQuit     = "q"
)

// ansiRe strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// TUITestFramework runs quickmenu in a pseudo-terminal and records its output
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string
	exited    chan error

	mu   sync.Mutex
	ring []byte
	head int
	full bool
}

// NewTUITest creates a driver for one test
func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t, ring: make([]byte, ringSize)}
}

// StartApp launches quickmenu with args in a 120x40 terminal
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C.UTF-8",
		"LANG=C.UTF-8",
		"HOME="+tf.workspace, // isolate $HOME and the default config
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
		"XDG_CACHE_HOME="+filepath.Join(tf.workspace, ".cache"),
	)

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start in pty: %w", err)
	}
	tf.pty = f

	tf.exited = make(chan error, 1)
	go func() { tf.exited <- tf.cmd.Wait() }()
	go tf.record()
	return nil
}

// record copies terminal output into the ring buffer until the pty closes
func (tf *TUITestFramework) record() {
	chunk := make([]byte, 8192)
	for {
		n, err := tf.pty.Read(chunk)
		if n > 0 {
			tf.mu.Lock()
			for _, b := range chunk[:n] {
				tf.ring[tf.head] = b
				tf.head = (tf.head + 1) % ringSize
				if tf.head == 0 {
					tf.full = true
				}
			}
			tf.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys writes raw key bytes to the terminal
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

func (tf *TUITestFramework) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }

// Quit presses q: it quits a closed overlay or the pager, and is typed into
// the query while the overlay is open
func (tf *TUITestFramework) Quit() error { return tf.SendKeys(KeyQuit) }

// Toggle opens or closes the overlay
func (tf *TUITestFramework) Toggle() error { return tf.SendKeys(KeyCtrlK) }

// Type enters text into the query field
func (tf *TUITestFramework) Type(query string) error { return tf.SendKeys(query) }

func (tf *TUITestFramework) Next() error { return tf.SendKeys(KeyTab) }
func (tf *TUITestFramework) Previous() error { return tf.SendKeys(KeyShiftTab) }
func (tf *TUITestFramework) Enter() error { return tf.SendKeys(KeyEnter) }
func (tf *TUITestFramework) Escape() error { return tf.SendKeys(KeyEsc) }
func (tf *TUITestFramework) OpenTree() error { return tf.SendKeys(KeyCtrlT) }

// WaitExit waits for the process to terminate
func (tf *TUITestFramework) WaitExit(timeout time.Duration) error {
	tf.t.Helper()
	select {
	case err := <-tf.exited:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("process did not exit within %s", timeout)
	}
}

// Ready waits for the first frame of the app
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.OutputContainsPlain("quickmenu", 5*time.Second)
}

// SeePlain waits up to three seconds for text in the normalized output
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

// WaitForStatusMessage waits for a status line text
func (tf *TUITestFramework) WaitForStatusMessage(message string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(message, timeout)
}

// OutputContainsPlain waits for text in the output with ANSI sequences removed
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor polls the raw output until pred holds or timeout expires
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Snapshot returns everything recorded so far, oldest first
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.ring[:tf.head])
	}
	return string(tf.ring[tf.head:]) + string(tf.ring[:tf.head])
}

// SnapshotPlain returns the recorded output with ANSI sequences removed
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// DumpTailOnFail saves the last n bytes of normalized output for debugging
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(s), 0644)
	t.Logf("Saved tail to %s", p)
}

// Cleanup closes the terminal, kills the app and removes the workspace
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close() // delivers SIGHUP
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		select {
		case <-tf.exited:
		case <-time.After(time.Second):
		}
		tf.cmd = nil
	}
	if tf.workspace != "" {
		_ = os.RemoveAll(tf.workspace)
		tf.workspace = ""
	}
}
