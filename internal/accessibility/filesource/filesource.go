// Package filesource serves a menu bar described in a YAML, JSON or TOML file.
// The file stands in for a running application: it is re-read whenever it
// changes, so editing it between a capture and an execution behaves like the
// application rebuilding its menus.
package filesource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"quickmenu/internal/accessibility"
	"quickmenu/internal/accessibility/memsource"
	"quickmenu/internal/domain"
	"quickmenu/internal/logging"
)

// Description is the on-disk menu description
type Description struct {
	App     string  `yaml:"app" json:"app" toml:"app"`
	PID     int     `yaml:"pid" json:"pid" toml:"pid"`
	Trusted *bool   `yaml:"trusted" json:"trusted" toml:"trusted"`
	Menu    []Entry `yaml:"menu" json:"menu" toml:"menu"`
}

// Entry is one menu row in a description
type Entry struct {
	Title    string  `yaml:"title" json:"title" toml:"title"`
	Enabled  *bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	Command  string  `yaml:"command" json:"command" toml:"command"`
	Children []Entry `yaml:"children" json:"children" toml:"children"`
}

// Parse decodes a description; format is "yaml", "json" or "toml"
func Parse(data []byte, format string) (*Description, error) {
	var desc Description
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &desc)
	case "json":
		err = json.Unmarshal(data, &desc)
	case "toml":
		err = toml.Unmarshal(data, &desc)
	default:
		return nil, fmt.Errorf("unsupported menu description format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s menu description: %w", format, err)
	}
	return &desc, nil
}

// FormatOf infers the description format from a file name
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Target returns the application identity declared by the description
func (d *Description) Target() domain.Target {
	return domain.Target{PID: d.PID, Name: d.App}
}

// Tree converts the description into an in-memory menu bar
func (d *Description) Tree() *memsource.Node {
	return &memsource.Node{Children: toNodes(d.Menu)}
}

func toNodes(entries []Entry) []*memsource.Node {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*memsource.Node, len(entries))
	for i, e := range entries {
		out[i] = &memsource.Node{
			Title:    e.Title,
			Disabled: e.Enabled != nil && !*e.Enabled,
			Command:  e.Command,
			Children: toNodes(e.Children),
		}
	}
	return out
}

// Source is an accessibility source backed by a description file
type Source struct {
	*memsource.Source

	path    string
	mu      sync.Mutex
	modTime time.Time
	size    int64
}

var _ accessibility.Source = (*Source)(nil)
var _ accessibility.TargetResolver = (*Source)(nil)
var _ accessibility.PermissionChecker = (*Source)(nil)

// Open loads the description at path
func Open(path string) (*Source, error) {
	desc, info, err := load(path)
	if err != nil {
		return nil, err
	}

	mem := memsource.New(desc.Target(), desc.Tree())
	mem.SetTrusted(desc.Trusted == nil || *desc.Trusted)
	mem.SetPerformFunc(runCommand)

	return &Source{
		Source:  mem,
		path:    path,
		modTime: info.ModTime(),
		size:    info.Size(),
	}, nil
}

// Path returns the description file location
func (s *Source) Path() string {
	return s.path
}

// Root re-reads the description when the file changed and returns its menu bar
func (s *Source) Root(ctx context.Context, pid int) (accessibility.Handle, error) {
	s.refresh()
	return s.Source.Root(ctx, pid)
}

func (s *Source) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		logging.Log.WithError(err).WithField("path", s.path).Warn("Menu description unavailable, keeping last tree")
		return
	}
	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return
	}

	desc, info, err := load(s.path)
	if err != nil {
		logging.Log.WithError(err).WithField("path", s.path).Warn("Menu description unreadable, keeping last tree")
		return
	}
	s.Source.Replace(desc.Tree())
	s.Source.SetTrusted(desc.Trusted == nil || *desc.Trusted)
	s.modTime = info.ModTime()
	s.size = info.Size()
	logging.Log.WithField("path", s.path).Debug("Menu description reloaded")
}

func load(path string) (*Description, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat menu description: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read menu description: %w", err)
	}
	desc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, nil, err
	}
	return desc, info, nil
}

// runCommand performs a menu action by running its shell command
func runCommand(ctx context.Context, n *memsource.Node) error {
	if n.Command == "" {
		logging.Log.WithField("title", n.Title).Info("Menu item activated")
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", n.Command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", n.Title, err, msg)
		}
		return fmt.Errorf("%s: %w", n.Title, err)
	}
	logging.Log.WithField("title", n.Title).WithField("command", n.Command).Info("Menu command finished")
	return nil
}
