package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"prohibition/internal/domain"
	"prohibition/internal/event"
	"prohibition/internal/infra"
	"prohibition/internal/infra/snapshot"
	"prohibition/internal/world"
)

// RunState is the scheduling state of the orchestrator.
type RunState int32

const (
	StateIdle RunState = iota
	StateScheduled
	StateRunning
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ErrStopped is returned by commands sent after Run has exited.
var ErrStopped = errors.New("orchestrator stopped")

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type cmdKind uint8

const (
	cmdStart cmdKind = iota + 1
	cmdFire
	cmdStep
	cmdLoad
	cmdTravel
	cmdOrder
)

type reply struct {
	result Result
	err    error
}

type command struct {
	kind  cmdKind
	gen   uint64
	state *world.State
	// player actions
	entity domain.EntityID
	city   domain.CityName
	line   domain.InventoryLine

	done chan reply
}

// Config wires an Orchestrator.
type Config struct {
	Interval  time.Duration
	InboxSize int
	Scheduler Scheduler
	RNG       domain.RandomSource
	Options   Options
	Log       *event.Log
	Logger    *slog.Logger
	Metrics   *infra.Metrics
	// DumpPath receives a compressed snapshot when the loop panics.
	DumpPath string
	// OnTick is called from the loop goroutine after each tick is committed.
	OnTick func(Result)
	// OnLoad is called from the loop goroutine after a world is loaded.
	OnLoad func(tick uint64)
}

// Orchestrator owns the only mutable handle to the world. Every mutation runs
// on the Run goroutine; the mutex only guards the swap for external readers.
type Orchestrator struct {
	inbox chan command
	stop  chan struct{}

	world    *world.State
	runState RunState
	gen      uint64
	timer    Timer

	interval time.Duration
	sched    Scheduler
	rng      domain.RandomSource
	opts     Options
	log      *event.Log
	logger   *slog.Logger
	metrics  *infra.Metrics
	dumpPath string
	onTick   func(Result)
	onLoad   func(tick uint64)

	mu sync.RWMutex
}

// NewOrchestrator creates an idle orchestrator over st.
func NewOrchestrator(st *world.State, cfg Config) *Orchestrator {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 64
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Log == nil {
		cfg.Log = event.NewLog()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.DumpPath == "" {
		cfg.DumpPath = "panic_dump.snap.zst"
	}
	return &Orchestrator{
		inbox:    make(chan command, cfg.InboxSize),
		stop:     make(chan struct{}),
		world:    st,
		runState: StateIdle,
		interval: cfg.Interval,
		sched:    cfg.Scheduler,
		rng:      cfg.RNG,
		opts:     cfg.Options.withDefaults(),
		log:      cfg.Log,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		dumpPath: cfg.DumpPath,
		onTick:   cfg.OnTick,
		onLoad:   cfg.OnLoad,
	}
}

// Run starts the main loop. This MUST be run in a single goroutine.
func (o *Orchestrator) Run(ctx context.Context) {
	o.logger.Info("Orchestrator started", slog.Uint64("tick", o.world.Tick))

	defer close(o.stop)
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			o.DumpState(o.dumpPath)
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			o.cancelTimer()
			o.logger.Info("Orchestrator stopping...", slog.Uint64("tick", o.world.Tick))
			return
		case cmd := <-o.inbox:
			o.handle(ctx, cmd)
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, cmd command) {
	var rep reply

	switch cmd.kind {
	case cmdStart:
		if o.RunState() == StateIdle {
			o.schedule()
		}
	case cmdFire:
		// A load or restart since this timer was armed makes it stale.
		if cmd.gen != o.gen || o.RunState() != StateScheduled {
			o.logger.Debug("Discarding stale tick", slog.Uint64("gen", cmd.gen), slog.Uint64("current", o.gen))
			return
		}
		o.runTick(ctx)
		o.schedule()
	case cmdStep:
		rep.result, rep.err = o.runTick(ctx)
	case cmdLoad:
		rep.err = o.load(cmd.state)
	case cmdTravel:
		rep.err = o.mutate(func(st *world.State) (event.Entry, error) {
			tr, err := Travel(st, cmd.entity, cmd.city)
			return event.Entry{Kind: event.KindTravel, Travel: &tr}, err
		})
	case cmdOrder:
		rep.err = o.mutate(func(st *world.State) (event.Entry, error) {
			city, err := SetOrder(st, cmd.entity, cmd.line)
			return event.Entry{Kind: event.KindOrder, Order: &event.OrderChange{Entity: cmd.entity, City: city, Line: cmd.line}}, err
		})
	default:
		o.logger.Warn("Unknown command", slog.Any("kind", cmd.kind))
	}

	if cmd.done != nil {
		cmd.done <- rep
	}
}

// runTick executes one tick body and swaps in the result.
func (o *Orchestrator) runTick(ctx context.Context) (Result, error) {
	prev := o.RunState()
	o.setRunState(StateRunning)
	defer o.setRunState(prev)

	start := time.Now()
	next, res, err := Tick(ctx, o.world, o.rng, o.opts)
	if err != nil {
		o.logger.Error("Tick failed", slog.Uint64("tick", o.world.Tick+1), slog.Any("error", err))
		if o.metrics != nil {
			o.metrics.RecordError()
		}
		return Result{}, err
	}

	o.mu.Lock()
	o.world = next
	o.log.AppendTick(res.Tick, res.Productions, res.Trades)
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.RecordTick(res.Tick, time.Since(start).Nanoseconds())
	}
	if len(res.Report.Clamped) > 0 {
		o.logger.Warn("Tick clamped inventory", slog.Uint64("tick", res.Tick), slog.Int("clamps", len(res.Report.Clamped)))
	}
	o.logger.Debug("Tick complete",
		slog.Uint64("tick", res.Tick),
		slog.Int("productions", len(res.Productions)),
		slog.Int("trades", len(res.Trades)),
	)

	if o.onTick != nil {
		o.onTick(res)
	}
	return res, nil
}

// load replaces the whole world. Any pending tick for the old world is discarded.
func (o *Orchestrator) load(st *world.State) error {
	if st == nil {
		return fmt.Errorf("load: nil state")
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	wasIdle := o.RunState() == StateIdle
	o.cancelTimer()
	o.gen++

	o.mu.Lock()
	o.world = st.Clone()
	o.log.Append(event.Entry{Tick: st.Tick, Kind: event.KindLoad})
	o.mu.Unlock()

	o.logger.Info("World loaded", slog.Uint64("tick", st.Tick), slog.Int("entities", len(st.Entities)))

	if !wasIdle {
		o.setRunState(StateIdle)
		o.schedule()
	}
	if o.onLoad != nil {
		o.onLoad(st.Tick)
	}
	return nil
}

// mutate applies a player action to a copy of the world and swaps it in on success.
func (o *Orchestrator) mutate(fn func(*world.State) (event.Entry, error)) error {
	next := o.world.Clone()
	entry, err := fn(next)
	if err != nil {
		return err
	}
	entry.Tick = next.Tick

	o.mu.Lock()
	o.world = next
	o.log.Append(entry)
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) schedule() {
	o.gen++
	gen := o.gen
	o.timer = o.sched.AfterFunc(o.interval, func() {
		select {
		case o.inbox <- command{kind: cmdFire, gen: gen}:
		case <-o.stop:
		}
	})
	o.setRunState(StateScheduled)
}

func (o *Orchestrator) cancelTimer() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) setRunState(s RunState) {
	o.mu.Lock()
	o.runState = s
	o.mu.Unlock()
}

// send delivers cmd to the loop and waits for its reply.
func (o *Orchestrator) send(ctx context.Context, cmd command) (reply, error) {
	cmd.done = make(chan reply, 1)
	select {
	case o.inbox <- cmd:
	case <-o.stop:
		return reply{}, ErrStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case r := <-cmd.done:
		return r, r.err
	case <-o.stop:
		return reply{}, ErrStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// Start moves an idle orchestrator to Scheduled. It is a no-op otherwise.
func (o *Orchestrator) Start(ctx context.Context) error {
	_, err := o.send(ctx, command{kind: cmdStart})
	return err
}

// Step runs one tick synchronously through the loop.
func (o *Orchestrator) Step(ctx context.Context) (Result, error) {
	r, err := o.send(ctx, command{kind: cmdStep})
	return r.result, err
}

// Load validates st and replaces the world with it.
func (o *Orchestrator) Load(ctx context.Context, st *world.State) error {
	_, err := o.send(ctx, command{kind: cmdLoad, state: st})
	return err
}

// Travel moves the player to city.
func (o *Orchestrator) Travel(ctx context.Context, player domain.EntityID, city domain.CityName) error {
	_, err := o.send(ctx, command{kind: cmdTravel, entity: player, city: city})
	return err
}

// SetOrder places a player order in the player's current city.
func (o *Orchestrator) SetOrder(ctx context.Context, player domain.EntityID, line domain.InventoryLine) error {
	_, err := o.send(ctx, command{kind: cmdOrder, entity: player, line: line})
	return err
}

// Snapshot returns a deep copy of the current world (external read).
func (o *Orchestrator) Snapshot() *world.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.world.Clone()
}

// State returns the current world. Callers must treat it as read-only.
func (o *Orchestrator) State() *world.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.world
}

// Checkpoint returns the current world together with the sequence of the last
// event that produced it. Both are read under one lock so they always agree.
func (o *Orchestrator) Checkpoint() (*world.State, uint64) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.world, o.log.LastSeq()
}

// RunState returns the scheduling state.
func (o *Orchestrator) RunState() RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.runState
}

// Events returns the event log entries.
func (o *Orchestrator) Events() []event.Entry {
	return o.log.Entries()
}

// EventsUntil returns the event log entries with Seq <= seq.
func (o *Orchestrator) EventsUntil(seq uint64) []event.Entry {
	return o.log.Until(seq)
}

// DumpState writes the world and event log to a compressed snapshot (for post-mortem).
func (o *Orchestrator) DumpState(path string) {
	o.logger.Info("Dumping internal state...", slog.String("file", path))

	st, seq := o.Checkpoint()
	if err := snapshot.Write(path, snapshot.New(st, o.log.Until(seq))); err != nil {
		o.logger.Error("Failed to write state dump", slog.Any("error", err))
	}
}
