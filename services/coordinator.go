package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"talk-explorer/models"
	"talk-explorer/views"
)

var (
	ErrClosed       = errors.New("coordinator closed")
	ErrUnknownVideo = errors.New("unknown video")
	ErrNotFailed    = errors.New("catalog load has not failed")
)

// Coordinator owns the view state of one page session: the catalog, the
// selection and the load status. All mutation happens on a single event-loop
// goroutine; the exported methods post work to it and wait for the result.
type Coordinator struct {
	loader Loader
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan func()
	done   chan struct{}

	mountOnce sync.Once
	closeOnce sync.Once

	// Owned by the loop goroutine.
	state   models.ViewState
	loadGen uint64
	subs    map[chan models.ViewState]struct{}
}

// NewCoordinator creates a coordinator and starts its event loop. The catalog
// is not requested until Mount.
func NewCoordinator(loader Loader, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		loader: loader,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan func()),
		done:   make(chan struct{}),
		state: models.ViewState{
			Status:  models.LoadStatus{Phase: models.PhaseIdle},
			Catalog: []models.Video{},
		},
		subs: make(map[chan models.ViewState]struct{}),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.ctx.Done():
			for ch := range c.subs {
				close(ch)
			}
			c.subs = nil
			return
		}
	}
}

// do hands fn to the loop. Once it returns nil, fn is guaranteed to run.
func (c *Coordinator) do(fn func()) error {
	select {
	case c.events <- fn:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Coordinator) call(fn func() error) error {
	errc := make(chan error, 1)
	if err := c.do(func() { errc <- fn() }); err != nil {
		return err
	}
	return <-errc
}

// Mount dispatches the catalog load. Only the first call has any effect.
func (c *Coordinator) Mount() {
	c.mountOnce.Do(func() {
		if err := c.do(c.dispatchLoad); err != nil {
			c.logger.Debug("mount after close ignored")
		}
	})
}

// Close stops the loop and abandons any load still in flight. It blocks until
// the loop has exited and is safe to call more than once.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done
		c.logger.Debug("coordinator closed")
	})
}

// State returns a snapshot of the current view state.
func (c *Coordinator) State() (models.ViewState, error) {
	var snap models.ViewState
	err := c.call(func() error {
		snap = c.state.Clone()
		return nil
	})
	return snap, err
}

// Render composes the root view for the current state.
func (c *Coordinator) Render() (views.Page, error) {
	state, err := c.State()
	if err != nil {
		return views.Page{}, err
	}
	return views.RootView(state, nil), nil
}

// Select activates the list row keyed by id. The list's selection callback
// is what writes the selection.
func (c *Coordinator) Select(id int64) error {
	return c.call(func() error {
		rows := views.ListView(c.state.Catalog, c.onSelect)
		row, ok := views.FindRow(rows, id)
		if !ok {
			return ErrUnknownVideo
		}
		row.Activate()
		return nil
	})
}

// Deselect clears the selection, hiding the detail view.
func (c *Coordinator) Deselect() error {
	return c.call(func() error {
		if c.state.Selection == nil {
			return nil
		}
		c.state.Selection = nil
		c.changed()
		return nil
	})
}

// Retry re-dispatches the catalog load after a failure.
func (c *Coordinator) Retry() error {
	return c.call(func() error {
		if c.state.Status.Phase != models.PhaseFailed {
			return ErrNotFailed
		}
		c.logger.Info("retrying catalog load")
		c.dispatchLoad()
		return nil
	})
}

// Subscribe returns a channel that receives the current state immediately
// and then the latest state after every change. Slow readers only miss
// intermediate states. The channel is closed when the coordinator closes or
// when cancel is called.
func (c *Coordinator) Subscribe() (<-chan models.ViewState, func(), error) {
	ch := make(chan models.ViewState, 1)
	err := c.call(func() error {
		c.subs[ch] = struct{}{}
		ch <- c.state.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = c.do(func() {
				if _, ok := c.subs[ch]; ok {
					delete(c.subs, ch)
					close(ch)
				}
			})
		})
	}
	return ch, cancel, nil
}

// AwaitSettled blocks until the catalog load has either succeeded or failed.
func (c *Coordinator) AwaitSettled(ctx context.Context) (models.ViewState, error) {
	ch, cancel, err := c.Subscribe()
	if err != nil {
		return models.ViewState{}, err
	}
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return models.ViewState{}, ctx.Err()
		case state, ok := <-ch:
			if !ok {
				return models.ViewState{}, ErrClosed
			}
			if state.Status.Settled() {
				return state, nil
			}
		}
	}
}

// onSelect is the list's selection callback. Runs on the loop.
func (c *Coordinator) onSelect(v models.Video) {
	c.state.Selection = &v
	c.logger.Debug("video selected", "id", v.ID)
	c.changed()
}

// dispatchLoad starts a background fetch. Runs on the loop.
func (c *Coordinator) dispatchLoad() {
	c.loadGen++
	gen := c.loadGen
	c.state.Status = models.LoadStatus{Phase: models.PhaseLoading}
	c.changed()

	go func() {
		videos, err := c.loader.Load(c.ctx)
		if c.ctx.Err() != nil {
			c.logger.Debug("catalog result abandoned")
			return
		}
		_ = c.do(func() { c.applyLoad(gen, videos, err) })
	}()
}

// applyLoad replaces the catalog in one step. Runs on the loop. Loads only
// follow Idle or Failed, so no selection exists to go stale.
func (c *Coordinator) applyLoad(gen uint64, videos []models.Video, err error) {
	if gen != c.loadGen || c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.logger.Warn("catalog load failed", "err", err)
		c.state.Status = models.LoadStatus{Phase: models.PhaseFailed, Reason: err.Error()}
		c.changed()
		return
	}

	catalog := make([]models.Video, len(videos))
	copy(catalog, videos)
	c.state.Catalog = catalog
	c.state.Status = models.LoadStatus{Phase: models.PhaseLoaded}
	c.changed()
}

// changed bumps the version and publishes to subscribers. Runs on the loop.
func (c *Coordinator) changed() {
	c.state.Version++
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.state.Clone()
	}
}
