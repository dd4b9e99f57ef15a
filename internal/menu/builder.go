// Package menu captures a live menu bar into a MenuNode tree.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"quickmenu/internal/accessibility"
	"quickmenu/internal/domain"
	"quickmenu/internal/logging"
)

// DefaultMaxDepth bounds recursion into untrusted sources
const DefaultMaxDepth = 64

// Options control normalization during capture
type Options struct {
	// SkipFirstTopLevel drops the first menu of the menu bar (the system menu
	// on platforms that put one there). Later menus keep their raw index.
	SkipFirstTopLevel bool
	// MaxDepth is the deepest level descended into; zero means DefaultMaxDepth
	MaxDepth int
}

// Builder performs depth-first captures against one source
type Builder struct {
	source accessibility.Source
	opts   Options
}

// NewBuilder creates a builder for source
func NewBuilder(source accessibility.Source, opts Options) *Builder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Builder{source: source, opts: opts}
}

// capture carries per-call state
type capture struct {
	*Builder
	ctx     context.Context
	log     *logrus.Entry
	usable  int
	clipped int
}

// Capture walks the menu bar of pid and returns its root node. Individual
// query failures turn the affected node into a leaf. Only a missing menu bar,
// a tree without a single usable entry, or an expired context fail the
// capture.
func (b *Builder) Capture(ctx context.Context, pid int) (*domain.MenuNode, error) {
	c := &capture{
		Builder: b,
		ctx:     ctx,
		log:     logging.Log.WithField("pid", pid),
	}

	rootHandle, err := b.source.Root(ctx, pid)
	if err != nil {
		if cerr := contextError(ctx); cerr != nil {
			return nil, cerr
		}
		if errors.Is(err, domain.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNoMenuBar, err)
	}

	root := &domain.MenuNode{Enabled: true, Path: domain.Path{}}
	root.Children = c.children(rootHandle, root.Path, 0)

	if err := contextError(ctx); err != nil {
		return nil, err
	}
	if c.clipped > 0 {
		c.log.WithField("nodes", c.clipped).Warnf("Menu deeper than %d levels, treated deeper entries as leaves", b.opts.MaxDepth)
	}
	if c.usable == 0 {
		return nil, domain.ErrEmpty
	}

	c.log.WithField("entries", c.usable).Debug("Menu captured")
	return root, nil
}

// children builds the normalized child list of the node at parentPath.
// depth is the depth of the parent; the menu bar is depth 0.
func (c *capture) children(h accessibility.Handle, parentPath domain.Path, depth int) []*domain.MenuNode {
	if c.ctx.Err() != nil {
		return nil
	}

	handles, err := c.source.Children(c.ctx, h)
	if err != nil {
		c.log.WithError(err).WithField("path", parentPath.Key()).Debug("Children query failed, treating as leaf")
		return nil
	}
	if len(handles) == 0 {
		return nil
	}
	if depth >= c.opts.MaxDepth {
		c.clipped++
		return nil
	}

	var out []*domain.MenuNode
	for rawIndex, child := range handles {
		if c.ctx.Err() != nil {
			return out
		}
		if depth == 0 && rawIndex == 0 && c.opts.SkipFirstTopLevel {
			continue
		}

		path := parentPath.Child(rawIndex)
		title := c.title(child, path)

		switch title {
		case domain.SeparatorTitle:
			out = append(out, &domain.MenuNode{Title: title, Path: path})

		case "":
			// Untitled grouping container: splice its entries in place. The
			// entries keep paths through the container so they resolve
			// against the real tree.
			out = append(out, c.children(child, path, depth+1)...)

		default:
			node := &domain.MenuNode{
				Title:   title,
				Enabled: c.enabled(child, path),
				Path:    path,
			}
			c.usable++
			node.Children = c.children(child, path, depth+1)
			out = append(out, node)
		}
	}
	return out
}

func (c *capture) title(h accessibility.Handle, path domain.Path) string {
	title, err := c.source.Title(c.ctx, h)
	if err != nil {
		c.log.WithError(err).WithField("path", path.Key()).Debug("Title query failed")
		return ""
	}
	return strings.TrimSpace(title)
}

func (c *capture) enabled(h accessibility.Handle, path domain.Path) bool {
	enabled, err := c.source.Enabled(c.ctx, h)
	if err != nil {
		c.log.WithError(err).WithField("path", path.Key()).Debug("Enabled query failed")
		return false
	}
	return enabled
}

// contextError maps an expired or cancelled context onto capture errors
func contextError(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.ErrTimeout
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return nil
}
