package loader

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	wasmcodecs "github.com/wippyai/wasm-codecs"
	"github.com/wippyai/wasm-codecs/errors"
)

// handle is the lifecycle record of one module. All fields except name,
// open and spec are guarded by Loader.mu.
type handle struct {
	name string
	open wasmcodecs.Opener
	spec ModuleSpec

	state   State
	inst    *instance // non-nil only when Ready
	lastErr error     // non-nil only when Failed

	gen    uint64             // incremented on every load attempt
	cancel context.CancelFunc // cancels the in-flight load
	done   chan struct{}      // closed when the current attempt finishes

	loadedAt     time.Time
	loadDuration time.Duration
}

// Status is a point-in-time view of a module.
type Status struct {
	LoadedAt     time.Time
	Err          error
	Name         string
	Spec         ModuleSpec
	Generation   uint64
	LoadDuration time.Duration
	State        State
}

// Ready reports whether operations on the module can succeed.
func (s Status) Ready() bool { return s.State == Ready }

func (h *handle) status() Status {
	return Status{
		Name:         h.name,
		Spec:         h.spec,
		State:        h.state,
		Err:          h.lastErr,
		Generation:   h.gen,
		LoadedAt:     h.loadedAt,
		LoadDuration: h.loadDuration,
	}
}

// Loader owns the codec modules of a process and drives their lifecycle.
// All methods are safe for concurrent use.
type Loader struct {
	log         *zap.Logger
	metrics     *Metrics
	loadTimeout time.Duration
	events      broker

	mu      sync.Mutex
	handles map[string]*handle
	order   []string
	closed  bool
}

// New creates an empty loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		log:         zap.NewNop(),
		loadTimeout: DefaultLoadTimeout,
		handles:     make(map[string]*handle),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds a module in the Unloaded state. Nothing is loaded until
// Initialize or a reload.
func (l *Loader) Register(name string, open wasmcodecs.Opener, opts ...ModuleOption) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "module name is empty")
	}
	if open == nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Module(name).
			Detail("opener is nil").
			Build()
	}

	h := &handle{name: name, open: open}
	for _, opt := range opts {
		opt(&h.spec)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.InvalidInput(errors.PhaseRegister, "loader is closed")
	}
	if _, dup := l.handles[name]; dup {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Module(name).
			Detail("module already registered").
			Build()
	}

	l.handles[name] = h
	l.order = append(l.order, name)
	l.metrics.setState(name, Unloaded)
	return nil
}

// Names returns the registered module names in registration order.
func (l *Loader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

// Initialize loads every module that is not Ready and blocks until those
// loads finish. Loads already in flight are joined rather than restarted.
// Failed modules are reset and retried. Failures are recorded per module and
// never returned.
func (l *Loader) Initialize(ctx context.Context) {
	l.wait(l.begin(ctx, l.Names()))
}

// InitializeAsync starts Initialize and returns a channel closed when it
// completes.
func (l *Loader) InitializeAsync(ctx context.Context) <-chan struct{} {
	waits := l.begin(ctx, l.Names())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.wait(waits)
	}()
	return done
}

// ForceReload discards every module's instance and error, then loads all
// modules afresh and waits for them. Loads in flight are cancelled and their
// results dropped.
func (l *Loader) ForceReload(ctx context.Context) {
	names := l.Names()
	l.log.Info("force reload", zap.Int("modules", len(names)))
	l.wait(l.restart(ctx, names))
}

// Reload is ForceReload for a single module.
func (l *Loader) Reload(ctx context.Context, name string) error {
	l.mu.Lock()
	_, ok := l.handles[name]
	l.mu.Unlock()
	if !ok {
		return errors.NotFound(errors.PhaseLoad, "module", name)
	}

	l.log.Info("reload", zap.String("module", name))
	l.wait(l.restart(ctx, []string{name}))
	return nil
}

type pending struct {
	h    *handle
	done chan struct{}
}

// begin starts or joins the loads of names and returns what to wait for.
func (l *Loader) begin(ctx context.Context, names []string) []pending {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	var waits []pending
	for _, name := range names {
		h, ok := l.handles[name]
		if !ok {
			continue
		}
		switch h.state {
		case Ready:
			continue
		case Loading:
			waits = append(waits, pending{h, h.done})
		case Failed:
			h.lastErr = nil
			l.transition(h, Unloaded, nil)
			fallthrough
		case Unloaded:
			waits = append(waits, pending{h, l.startLoad(ctx, h)})
		}
	}
	return waits
}

// wait blocks until each module has settled. A load superseded by a reload
// hands the wait over to its successor.
func (l *Loader) wait(waits []pending) {
	for _, p := range waits {
		done := p.done
		for {
			<-done
			l.mu.Lock()
			next, loading := p.h.done, p.h.state == Loading
			l.mu.Unlock()
			if !loading || next == done {
				break
			}
			done = next
		}
	}
}

// restart resets names to Unloaded and starts their next load under one
// hold of l.mu, so no waiter observes a module between the two. Released
// instances are closed afterwards, once their leases drain.
func (l *Loader) restart(ctx context.Context, names []string) []pending {
	var (
		released []*handleInstance
		waits    []pending
	)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	for _, name := range names {
		h, ok := l.handles[name]
		if !ok {
			continue
		}
		if inst := l.reset(h); inst != nil {
			released = append(released, &handleInstance{name: h.name, inst: inst})
		}
		waits = append(waits, pending{h, l.startLoad(ctx, h)})
	}
	l.mu.Unlock()

	l.closeInstances(ctx, released)
	return waits
}

type handleInstance struct {
	name string
	inst *instance
}

func (l *Loader) closeInstances(ctx context.Context, released []*handleInstance) {
	for _, r := range released {
		if err := r.inst.close(ctx); err != nil {
			l.log.Warn("close codec instance", zap.String("module", r.name), zap.Error(err))
		}
	}
}

// reset must be called with l.mu held. It returns the instance to close.
func (l *Loader) reset(h *handle) *instance {
	if h.state == Unloaded {
		return nil
	}
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	inst := h.inst
	h.inst = nil
	h.lastErr = nil
	l.transition(h, Unloaded, nil)
	return inst
}

// startLoad must be called with l.mu held and h Unloaded.
func (l *Loader) startLoad(ctx context.Context, h *handle) chan struct{} {
	h.gen++
	loadCtx, cancel := context.WithTimeout(ctx, l.loadTimeout)
	done := make(chan struct{})
	h.cancel = cancel
	h.done = done
	l.transition(h, Loading, nil)

	go l.load(loadCtx, cancel, h, h.gen, done)
	return done
}

type openResult struct {
	codec wasmcodecs.Codec
	err   error
}

func (l *Loader) load(ctx context.Context, cancel context.CancelFunc, h *handle, gen uint64, done chan struct{}) {
	defer close(done)
	defer cancel()

	start := time.Now()
	c, err := l.open(ctx, h)
	elapsed := time.Since(start)

	l.mu.Lock()
	if h.gen != gen || h.state != Loading {
		l.mu.Unlock()
		l.metrics.observeLoad(h.name, loadStale, elapsed)
		l.log.Debug("discarding stale load result",
			zap.String("module", h.name),
			zap.Uint64("generation", gen))
		if c != nil {
			l.closeAbandoned(h.name, c)
		}
		return
	}

	h.cancel = nil
	if err != nil {
		if !errors.IsKind(err, errors.KindLoadFailure) {
			err = errors.LoadFailure(h.name, err)
		}
		h.lastErr = err
		l.transition(h, Failed, err)
		l.mu.Unlock()

		l.metrics.observeLoad(h.name, loadFailed, elapsed)
		l.log.Warn("module load failed",
			zap.String("module", h.name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}

	h.inst = newInstance(c)
	h.loadedAt = time.Now()
	h.loadDuration = elapsed
	l.transition(h, Ready, nil)
	l.mu.Unlock()

	l.metrics.observeLoad(h.name, loadReady, elapsed)
	l.log.Info("module ready",
		zap.String("module", h.name),
		zap.Duration("elapsed", elapsed))
}

// open runs the module's opener under ctx. An opener that ignores ctx is
// abandoned when ctx ends and whatever it returns later is closed.
func (l *Loader) open(ctx context.Context, h *handle) (wasmcodecs.Codec, error) {
	res := make(chan openResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.log.Error("module opener panicked",
					zap.String("module", h.name),
					zap.Any("panic", r),
					zap.Stack("stack"))
				res <- openResult{err: fmt.Errorf("opener panicked: %v", r)}
			}
		}()
		c, err := h.open(ctx)
		res <- openResult{codec: c, err: err}
	}()

	select {
	case r := <-res:
		if r.err != nil {
			if r.codec != nil {
				l.closeAbandoned(h.name, r.codec)
			}
			return nil, r.err
		}
		if r.codec == nil {
			return nil, stderrors.New("opener returned no codec")
		}
		return r.codec, nil
	case <-ctx.Done():
		go func() {
			if r := <-res; r.codec != nil {
				l.closeAbandoned(h.name, r.codec)
			}
		}()
		return nil, fmt.Errorf("load aborted: %w", ctx.Err())
	}
}

// closeAbandoned closes a codec that never became a module's instance.
func (l *Loader) closeAbandoned(name string, c wasmcodecs.Codec) {
	if err := c.Close(context.Background()); err != nil {
		l.log.Warn("close abandoned codec", zap.String("module", name), zap.Error(err))
	}
}

// transition must be called with l.mu held.
func (l *Loader) transition(h *handle, to State, cause error) bool {
	from := h.state
	if err := ValidateTransition(from, to); err != nil {
		l.log.Error("rejected module state transition",
			zap.String("module", h.name),
			zap.Error(err))
		return false
	}

	h.state = to
	l.metrics.setState(h.name, to)
	l.log.Debug("module state",
		zap.String("module", h.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Uint64("generation", h.gen))

	l.events.publish(Event{
		Module:     h.name,
		From:       from,
		To:         to,
		Generation: h.gen,
		Err:        cause,
		At:         time.Now(),
	})
	return true
}

// State returns the current state of a module.
func (l *Loader) State(name string) (State, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.handles[name]
	if !ok {
		return Unloaded, false
	}
	return h.state, true
}

// Status returns a view of one module.
func (l *Loader) Status(name string) (Status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.handles[name]
	if !ok {
		return Status{}, false
	}
	return h.status(), true
}

// Snapshot returns a view of every module in registration order.
func (l *Loader) Snapshot() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Status, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.handles[name].status())
	}
	return out
}

// Subscribe returns a channel of state transitions and a function that ends
// the subscription and closes the channel. Publishing never blocks; when the
// buffer is full events are dropped, so consumers should re-read Snapshot
// rather than rely on seeing every transition.
func (l *Loader) Subscribe(buffer int) (<-chan Event, func()) {
	return l.events.subscribe(buffer)
}

// Close cancels in-flight loads, closes every instance and ends all
// subscriptions. The loader cannot be used afterwards.
func (l *Loader) Close(ctx context.Context) error {
	var released []*handleInstance

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	for _, name := range l.order {
		h := l.handles[name]
		if inst := l.reset(h); inst != nil {
			released = append(released, &handleInstance{name: h.name, inst: inst})
		}
	}
	l.closed = true
	l.mu.Unlock()

	var errs []error
	for _, r := range released {
		if err := r.inst.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", r.name, err))
		}
	}
	l.events.closeAll()
	return stderrors.Join(errs...)
}
