package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickmenu/internal/accessibility/memsource"
	"quickmenu/internal/config"
	"quickmenu/internal/domain"
	"quickmenu/internal/eventbus"
)

var app = domain.Target{PID: 7, Name: "Editor"}

// recorder is a synchronous bus that keeps every published event
type recorder struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (r *recorder) Publish(e eventbus.DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Subscribe(eventbus.EventType, eventbus.EventHandler) func() { return func() {} }
func (r *recorder) Close() {}

func (r *recorder) ofType(t eventbus.EventType) []eventbus.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []eventbus.DomainEvent
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) transitions() []domain.SessionState {
	var out []domain.SessionState
	for _, e := range r.ofType(eventbus.EventSessionStateChanged) {
		out = append(out, e.(domain.SessionStateChangedEvent).To)
	}
	return out
}

func editorMenu() *memsource.Node {
	return memsource.Menu("",
		memsource.Menu("File",
			memsource.Item("New"),
			memsource.Item("Save"),
			memsource.Item("Save As…"),
			memsource.DisabledItem("Print"),
		),
		memsource.Menu("Edit", memsource.Item("Undo"), memsource.Item("Redo")),
		memsource.Menu("View", memsource.Item("Zoom In")),
	)
}

func testConfig() config.Config {
	cfg := *config.DefaultConfig()
	cfg.ActionDelayMs = 0
	return cfg
}

func newController(t *testing.T, src *memsource.Source) (*Controller, *recorder) {
	t.Helper()
	bus := &recorder{}
	c, err := New(Deps{Source: src, Resolver: src, Permissions: src, Bus: bus}, testConfig())
	require.NoError(t, err)
	return c, bus
}

// open toggles a session and delivers its capture
func open(t *testing.T, c *Controller) {
	t.Helper()
	task := c.OnToggle()
	require.NotNil(t, task)
	c.Deliver(task())
	require.Equal(t, domain.StatePresenting, c.State())
}

func crumbs(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Breadcrumb
	}
	return out
}

func TestToggleCapturesAndPresents(t *testing.T) {
	src := memsource.New(app, editorMenu())
	c, bus := newController(t, src)

	task := c.OnToggle()
	require.NotNil(t, task)
	assert.Equal(t, domain.StateCapturing, c.State())
	assert.Equal(t, app, c.Target())
	assert.NotEmpty(t, c.SessionID())

	c.Deliver(task())
	assert.Equal(t, domain.StatePresenting, c.State())
	assert.Equal(t, []string{"File", "Edit", "View"}, crumbs(c.Results()))
	assert.Equal(t, 0, c.Highlighted())
	assert.Len(t, c.Items(), 10)
	assert.NotNil(t, c.Tree())

	assert.Equal(t, []domain.SessionState{domain.StateCapturing, domain.StatePresenting}, bus.transitions())
	require.Len(t, bus.ofType(eventbus.EventCaptureCompleted), 1)
	assert.NotEmpty(t, bus.ofType(eventbus.EventResultsUpdated))
}

func TestQueryAndCycle(t *testing.T) {
	c, bus := newController(t, memsource.New(app, editorMenu()))
	open(t, c)

	c.OnQueryChanged("save")
	assert.Equal(t, "save", c.Query())
	assert.Equal(t, []string{"File → Save", "File → Save As…"}, crumbs(c.Results()))
	assert.Equal(t, 0, c.Highlighted())

	c.OnCycle(true)
	assert.Equal(t, 1, c.Highlighted())
	c.OnCycle(true)
	assert.Equal(t, 0, c.Highlighted())
	c.OnCycle(false)
	assert.Equal(t, 1, c.Highlighted())

	// The highlight falls back to the first result once its index is gone
	c.OnQueryChanged("save as")
	assert.Equal(t, []string{"File → Save As…"}, crumbs(c.Results()))
	assert.Equal(t, 0, c.Highlighted())

	last := bus.ofType(eventbus.EventResultsUpdated)
	require.NotEmpty(t, last)
	ev := last[len(last)-1].(domain.ResultsUpdatedEvent)
	assert.Equal(t, "save as", ev.Query)
	assert.Equal(t, 1, ev.Count)
}

func TestDisabledResultsAreNotSelectable(t *testing.T) {
	c, _ := newController(t, memsource.New(app, editorMenu()))
	open(t, c)

	c.OnQueryChanged("print")
	require.Len(t, c.Results(), 1)
	assert.Equal(t, -1, c.Highlighted())
	assert.Nil(t, c.OnCommit())
	assert.Equal(t, domain.StatePresenting, c.State())

	assert.False(t, c.OnSelect(0))
}

func TestQueryTypedWhileCapturing(t *testing.T) {
	c, _ := newController(t, memsource.New(app, editorMenu()))

	task := c.OnToggle()
	c.OnQueryChanged("undo")
	c.Deliver(task())

	assert.Equal(t, []string{"Edit → Undo"}, crumbs(c.Results()))
}

func TestCommitExecutesAndCloses(t *testing.T) {
	root := editorMenu()
	src := memsource.New(app, root)
	c, bus := newController(t, src)
	open(t, c)

	c.OnQueryChanged("redo")
	task := c.OnCommit()
	require.NotNil(t, task)
	assert.Equal(t, domain.StateIdle, c.State(), "the overlay closes before the action runs")
	assert.Empty(t, c.Results())

	c.Deliver(task())
	require.Len(t, src.Performed(), 1)
	assert.Same(t, root.Children[1].Children[1], src.Performed()[0])

	finished := bus.ofType(eventbus.EventExecutionFinished)
	require.Len(t, finished, 1)
	ev := finished[0].(domain.ExecutionFinishedEvent)
	assert.NoError(t, ev.Err)
	assert.Equal(t, "Edit → Redo", ev.Breadcrumb)
	assert.Equal(t, domain.Path{1, 1}, ev.Path)
	assert.NoError(t, c.Err())
}

func TestCommitAfterMenuChangedReportsStaleTree(t *testing.T) {
	src := memsource.New(app, editorMenu())
	c, bus := newController(t, src)
	open(t, c)

	c.OnQueryChanged("zoom")
	src.Mutate(func(root *memsource.Node) {
		root.Children[2].Children = nil
	})

	task := c.OnCommit()
	require.NotNil(t, task)
	c.Deliver(task())

	assert.Empty(t, src.Performed())
	assert.ErrorIs(t, c.Err(), domain.ErrStaleTree)
	ev := bus.ofType(eventbus.EventExecutionFinished)[0].(domain.ExecutionFinishedEvent)
	assert.ErrorIs(t, ev.Err, domain.ErrStaleTree)
	assert.Equal(t, domain.StateIdle, c.State())
}

func TestCommitActionTimesOut(t *testing.T) {
	src := memsource.New(app, editorMenu())
	src.SetPerformFunc(func(ctx context.Context, n *memsource.Node) error {
		<-ctx.Done()
		return ctx.Err()
	})
	c, _ := newController(t, src)
	cfg := testConfig()
	cfg.ActionTimeoutMs = 20
	require.NoError(t, c.ApplyConfig(cfg))
	open(t, c)

	c.OnQueryChanged("undo")
	task := c.OnCommit()
	require.NotNil(t, task)
	c.Deliver(task())

	assert.ErrorIs(t, c.Err(), domain.ErrActionFailed)
	assert.True(t, domain.IsExecutionError(c.Err()))
}

func TestCommitUsesPinnedTarget(t *testing.T) {
	src := memsource.New(app, editorMenu())
	var got []domain.Target
	exec := executorFunc(func(ctx context.Context, target domain.Target, path domain.Path) error {
		got = append(got, target)
		return nil
	})

	c, err := New(Deps{Source: src, Resolver: src, Executor: exec}, testConfig())
	require.NoError(t, err)
	open(t, c)

	task := c.OnCommit()
	require.NotNil(t, task)
	c.Deliver(task())
	assert.Equal(t, []domain.Target{app}, got)
}

type executorFunc func(ctx context.Context, target domain.Target, path domain.Path) error

func (f executorFunc) Execute(ctx context.Context, target domain.Target, path domain.Path) error {
	return f(ctx, target, path)
}

func TestToggleWhilePresentingCloses(t *testing.T) {
	c, bus := newController(t, memsource.New(app, editorMenu()))
	open(t, c)
	gen := c.Generation()

	assert.Nil(t, c.OnToggle())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.Greater(t, c.Generation(), gen)
	assert.Empty(t, c.Results())
	assert.Empty(t, c.Query())

	// A third toggle starts a fresh session
	open(t, c)
	assert.Equal(t, []domain.SessionState{
		domain.StateCapturing, domain.StatePresenting, domain.StateIdle,
		domain.StateCapturing, domain.StatePresenting,
	}, bus.transitions())
}

func TestStaleCaptureIsDiscarded(t *testing.T) {
	c, bus := newController(t, memsource.New(app, editorMenu()))

	stale := c.OnToggle()
	require.NotNil(t, stale)
	c.OnClose()
	assert.Equal(t, domain.StateIdle, c.State())

	c.Deliver(stale())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.Empty(t, c.Results())
	assert.Empty(t, bus.ofType(eventbus.EventCaptureCompleted))

	// A capture from a superseded session must not land in the new one
	fresh := c.OnToggle()
	c.Deliver(stale())
	assert.Equal(t, domain.StateCapturing, c.State())
	c.Deliver(fresh())
	assert.Equal(t, domain.StatePresenting, c.State())
}

func TestCloseCancelsCapture(t *testing.T) {
	src := memsource.New(app, editorMenu())
	src.SetLatency(time.Hour)
	c, _ := newController(t, src)

	task := c.OnToggle()
	require.NotNil(t, task)

	done := make(chan Outcome, 1)
	go func() { done <- task() }()

	c.OnClose()
	select {
	case o := <-done:
		captured := o.(Captured)
		assert.ErrorIs(t, captured.Err, context.Canceled)
		c.Deliver(o)
		assert.Equal(t, domain.StateIdle, c.State())
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not stop after close")
	}
}

func TestCaptureFailureReturnsToIdle(t *testing.T) {
	src := memsource.New(app, memsource.Menu(""))
	c, bus := newController(t, src)

	task := c.OnToggle()
	c.Deliver(task())

	assert.Equal(t, domain.StateIdle, c.State())
	assert.ErrorIs(t, c.Err(), domain.ErrEmpty)
	failed := bus.ofType(eventbus.EventCaptureFailed)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].(domain.CaptureFailedEvent).Err, domain.ErrEmpty)
	assert.Equal(t, []domain.SessionState{domain.StateCapturing, domain.StateIdle}, bus.transitions())
}

func TestCaptureTimeout(t *testing.T) {
	src := memsource.New(app, editorMenu())
	src.SetLatency(50 * time.Millisecond)
	c, _ := newController(t, src)

	cfg := testConfig()
	cfg.CaptureTimeoutMs = 20
	require.NoError(t, c.ApplyConfig(cfg))

	task := c.OnToggle()
	c.Deliver(task())
	assert.ErrorIs(t, c.Err(), domain.ErrTimeout)
	assert.Equal(t, domain.StateIdle, c.State())
}

func TestPermissionDenied(t *testing.T) {
	src := memsource.New(app, editorMenu())
	src.SetTrusted(false)
	c, bus := newController(t, src)

	assert.Nil(t, c.OnToggle())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.ErrorIs(t, c.Err(), domain.ErrPermissionDenied)
	assert.Len(t, bus.ofType(eventbus.EventPermissionDenied), 1)
	assert.Empty(t, bus.transitions())
}

func TestExcludedEverythingIsEmpty(t *testing.T) {
	c, _ := newController(t, memsource.New(app, editorMenu()))
	cfg := testConfig()
	cfg.Exclude = []string{"*"}
	require.NoError(t, c.ApplyConfig(cfg))

	task := c.OnToggle()
	c.Deliver(task())
	assert.ErrorIs(t, c.Err(), domain.ErrEmpty)
}

func TestConfigAppliesToNextSession(t *testing.T) {
	c, _ := newController(t, memsource.New(app, editorMenu()))
	open(t, c)

	cfg := testConfig()
	cfg.MaxResults = 1
	require.NoError(t, c.ApplyConfig(cfg))

	c.OnQueryChanged("e")
	assert.Greater(t, len(c.Results()), 1, "running session keeps its settings")

	c.OnClose()
	open(t, c)
	c.OnQueryChanged("e")
	assert.Len(t, c.Results(), 1)
}

func TestSkipFirstTopLevel(t *testing.T) {
	root := memsource.Menu("",
		memsource.Menu("Apple", memsource.Item("About")),
		memsource.Menu("File", memsource.Item("Open")),
	)
	src := memsource.New(app, root)
	c, _ := newController(t, src)
	cfg := testConfig()
	cfg.SkipFirstTopLevel = true
	require.NoError(t, c.ApplyConfig(cfg))

	open(t, c)
	assert.Equal(t, []string{"File"}, crumbs(c.Results()))

	c.OnQueryChanged("open")
	c.Deliver(c.OnCommit()())
	require.Len(t, src.Performed(), 1)
	assert.Same(t, root.Children[1].Children[0], src.Performed()[0])
}

func TestResolverFailure(t *testing.T) {
	src := memsource.New(app, editorMenu())
	boom := errors.New("no frontmost application")
	c, err := New(Deps{Source: src, Resolver: failingResolver{boom}}, testConfig())
	require.NoError(t, err)

	assert.Nil(t, c.OnToggle())
	assert.Equal(t, domain.StateIdle, c.State())
	assert.ErrorIs(t, c.Err(), boom)
}

type failingResolver struct{ err error }

func (f failingResolver) Frontmost(context.Context) (domain.Target, error) {
	return domain.Target{}, f.err
}

func TestOperationsWhileIdleAreIgnored(t *testing.T) {
	c, bus := newController(t, memsource.New(app, editorMenu()))

	c.OnQueryChanged("x")
	c.OnCycle(true)
	assert.False(t, c.OnSelect(0))
	assert.Nil(t, c.OnCommit())
	c.OnClose()

	assert.Equal(t, domain.StateIdle, c.State())
	assert.Empty(t, c.Query())
	assert.Empty(t, bus.events)
}

func TestHideDisabledResults(t *testing.T) {
	c, _ := newController(t, memsource.New(app, editorMenu()))
	cfg := testConfig()
	cfg.UISettings.ShowDisabled = false
	require.NoError(t, c.ApplyConfig(cfg))
	open(t, c)

	c.OnQueryChanged("print")
	assert.Empty(t, c.Results())

	c.OnQueryChanged("file")
	for _, item := range c.Results() {
		assert.True(t, item.Enabled, item.Breadcrumb)
	}
}
