// Package session runs one capture, search and execute cycle at a time.
//
// The Controller is owned by the interaction loop and must only be called
// from it. Work that touches the accessibility source is returned as a Task;
// the loop runs it elsewhere and passes the Outcome back to Deliver, which
// drops outcomes from sessions that have since been closed.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quickmenu/internal/accessibility"
	"quickmenu/internal/config"
	"quickmenu/internal/domain"
	"quickmenu/internal/eventbus"
	"quickmenu/internal/executor"
	"quickmenu/internal/logging"
	"quickmenu/internal/menu"
	"quickmenu/internal/search"
	"quickmenu/internal/selection"
)

// Deps are the collaborators of a Controller
type Deps struct {
	Source      accessibility.Source
	Resolver    accessibility.TargetResolver
	Permissions accessibility.PermissionChecker
	Bus         eventbus.EventBus
	// Executor overrides the executor built from the session's config
	Executor executor.ActionExecutor
}

// Controller owns the session state machine
type Controller struct {
	deps Deps

	// latest configuration, picked up by the next session
	cfg     config.Config
	indexer *search.Indexer

	// current session
	state      domain.SessionState
	generation uint64
	sessionID  string
	target     domain.Target
	active     config.Config
	cancel     context.CancelFunc
	tree       *domain.MenuNode
	items      []domain.Item
	query      string
	sel        *selection.Controller
	viewport   int
	lastErr    error
}

// New creates an idle controller
func New(deps Deps, cfg config.Config) (*Controller, error) {
	if deps.Bus == nil {
		deps.Bus = eventbus.NullBus{}
	}
	c := &Controller{
		deps:  deps,
		state: domain.StateIdle,
		sel:   selection.New(nil),
	}
	if err := c.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyConfig replaces the configuration used by the next session. A session
// already running keeps the settings it started with.
func (c *Controller) ApplyConfig(cfg config.Config) error {
	cfg.Normalize()
	indexer, err := search.NewIndexer(cfg.Exclude)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.indexer = indexer
	return nil
}

// Config returns the configuration the next session will use
func (c *Controller) Config() config.Config {
	return c.cfg
}

// OnToggle starts a session when idle and closes the current one otherwise.
// The returned task performs the capture; it is nil when no capture starts.
func (c *Controller) OnToggle() Task {
	if c.state != domain.StateIdle {
		c.OnClose()
		return nil
	}
	return c.start()
}

func (c *Controller) start() Task {
	c.lastErr = nil

	if c.deps.Permissions != nil && !c.deps.Permissions.Trusted() {
		logging.Log.Warn("Accessibility permission not granted, not starting a session")
		c.lastErr = domain.ErrPermissionDenied
		c.deps.Bus.Publish(domain.PermissionDeniedEvent{})
		return nil
	}

	cfg := c.cfg
	ctx, cancel := context.WithTimeout(context.Background(), cfg.CaptureTimeout())

	// The target is pinned now so execution hits the same process even if
	// focus moves while the overlay is open.
	target, err := c.deps.Resolver.Frontmost(ctx)
	if err != nil {
		cancel()
		logging.Log.WithError(err).Warn("Could not determine the target application")
		c.lastErr = err
		c.deps.Bus.Publish(domain.CaptureFailedEvent{Err: err})
		return nil
	}

	c.generation++
	c.sessionID = uuid.NewString()
	c.target = target
	c.active = cfg
	c.cancel = cancel
	c.tree = nil
	c.items = nil
	c.query = ""
	c.sel = selection.New(nil)
	c.sel.SetViewportHeight(c.viewport)
	c.setState(domain.StateCapturing)

	gen := c.generation
	source := c.deps.Source
	indexer := c.indexer
	opts := menu.Options{SkipFirstTopLevel: cfg.SkipFirstTopLevel, MaxDepth: cfg.MaxDepth}

	return func() Outcome {
		began := time.Now()
		tree, err := menu.NewBuilder(source, opts).Capture(ctx, target.PID)
		if err != nil {
			return Captured{Generation: gen, Target: target, Err: err, Duration: time.Since(began)}
		}
		items := indexer.Build(tree)
		if len(items) == 0 {
			err = domain.ErrEmpty
		}
		return Captured{
			Generation: gen,
			Target:     target,
			Tree:       tree,
			Items:      items,
			Duration:   time.Since(began),
			Err:        err,
		}
	}
}

// OnQueryChanged records the query and, once presenting, recomputes the
// results. Text typed while capturing is applied when the capture lands.
func (c *Controller) OnQueryChanged(query string) {
	if c.state == domain.StateIdle {
		return
	}
	c.query = query
	if c.state == domain.StatePresenting {
		c.refresh()
	}
}

// OnCycle moves the highlight to the next or previous enabled result
func (c *Controller) OnCycle(forward bool) {
	if c.state != domain.StatePresenting {
		return
	}
	dir := selection.DirectionForward
	if !forward {
		dir = selection.DirectionBackward
	}
	c.sel.Cycle(dir)
	c.publishResults()
}

// OnSelect highlights the result at index (pointer selection)
func (c *Controller) OnSelect(index int) bool {
	if c.state != domain.StatePresenting {
		return false
	}
	if !c.sel.Select(index) {
		return false
	}
	c.publishResults()
	return true
}

// OnCommit closes the session and returns a task executing the highlighted
// result. It returns nil when nothing is highlighted.
func (c *Controller) OnCommit() Task {
	if c.state != domain.StatePresenting {
		return nil
	}
	item, ok := c.sel.Current()
	if !ok {
		return nil
	}

	target := c.target
	sessionID := c.sessionID
	cfg := c.active
	exec := c.deps.Executor
	if exec == nil {
		exec = executor.New(c.deps.Source, cfg.ActionDelay())
	}

	c.log().WithField("path", item.Path.Key()).Infof("Executing %q", item.Breadcrumb)
	c.OnClose()
	gen := c.generation

	return func() Outcome {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ActionDelay()+cfg.ActionTimeout())
		defer cancel()
		err := exec.Execute(ctx, target, item.Path)
		return Executed{Generation: gen, SessionID: sessionID, Target: target, Item: item, Err: err}
	}
}

// OnClose ends the session, discarding its index and selection. A capture
// still running is cancelled and its outcome will be ignored.
func (c *Controller) OnClose() {
	if c.state == domain.StateIdle {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.tree = nil
	c.items = nil
	c.query = ""
	c.sel = selection.New(nil)
	c.sel.SetViewportHeight(c.viewport)
	c.setState(domain.StateIdle)
}

// Deliver applies the outcome of a task. Outcomes from an older generation
// are dropped.
func (c *Controller) Deliver(o Outcome) {
	switch o := o.(type) {
	case Captured:
		c.deliverCapture(o)
	case Executed:
		c.deliverExecution(o)
	}
}

func (c *Controller) deliverCapture(o Captured) {
	if o.Generation != c.generation || c.state != domain.StateCapturing {
		logging.Log.WithFields(logrus.Fields{
			"generation": o.Generation,
			"current":    c.generation,
		}).Debug("Discarding capture from a closed session")
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if o.Err != nil {
		c.log().WithError(o.Err).Warn("Capture failed")
		c.lastErr = o.Err
		c.deps.Bus.Publish(domain.CaptureFailedEvent{SessionID: c.sessionID, Target: o.Target, Err: o.Err})
		if errors.Is(o.Err, domain.ErrPermissionDenied) {
			c.deps.Bus.Publish(domain.PermissionDeniedEvent{})
		}
		c.OnClose()
		return
	}

	c.tree = o.Tree
	c.items = o.Items
	c.log().WithFields(logrus.Fields{
		"items":    len(o.Items),
		"duration": o.Duration,
	}).Info("Menu captured")
	c.deps.Bus.Publish(domain.CaptureCompletedEvent{
		SessionID: c.sessionID,
		Target:    o.Target,
		Items:     len(o.Items),
		Duration:  o.Duration,
	})

	c.setState(domain.StatePresenting)
	c.refresh()
}

func (c *Controller) deliverExecution(o Executed) {
	log := logging.Log.WithFields(logrus.Fields{
		"session": o.SessionID,
		"target":  o.Target.String(),
		"path":    o.Item.Path.Key(),
	})
	switch {
	case o.Err == nil:
		log.Debug("Menu action performed")
	case errors.Is(o.Err, domain.ErrStaleTree):
		log.WithError(o.Err).Info("Menu changed before the action ran")
	default:
		log.WithError(o.Err).Warn("Menu action failed")
	}

	// Only surface the error while no newer session has started
	if o.Err != nil && o.Generation == c.generation {
		c.lastErr = o.Err
	}
	c.deps.Bus.Publish(domain.ExecutionFinishedEvent{
		SessionID:  o.SessionID,
		Target:     o.Target,
		Path:       o.Item.Path,
		Breadcrumb: o.Item.Breadcrumb,
		Err:        o.Err,
	})
}

func (c *Controller) refresh() {
	items := c.items
	if !c.active.UISettings.ShowDisabled {
		items = enabledOnly(items)
	}
	results := search.Search(c.query, items, c.active.MaxResults)
	c.sel.Refresh(results)
	c.publishResults()
}

func enabledOnly(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.Enabled {
			out = append(out, item)
		}
	}
	return out
}

func (c *Controller) publishResults() {
	c.deps.Bus.Publish(domain.ResultsUpdatedEvent{
		SessionID:   c.sessionID,
		Query:       c.query,
		Count:       c.sel.Len(),
		Highlighted: c.sel.Highlighted(),
	})
}

func (c *Controller) setState(to domain.SessionState) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.log().Debugf("Session %s -> %s", from, to)
	c.deps.Bus.Publish(domain.SessionStateChangedEvent{
		SessionID:  c.sessionID,
		Generation: c.generation,
		From:       from,
		To:         to,
		Target:     c.target,
	})
}

func (c *Controller) log() *logrus.Entry {
	return logging.Log.WithFields(logrus.Fields{
		"session":    c.sessionID,
		"generation": c.generation,
		"target":     c.target.String(),
	})
}
