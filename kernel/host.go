package kernel

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"pipelined.dev/vocoder/log"
	"pipelined.dev/vocoder/metric"
	"pipelined.dev/vocoder/mutable"
	"pipelined.dev/vocoder/spectral"
)

// Host owns the active kernel. Kernels are built and loaded in the
// background by Watch and handed over to the resynthesis goroutine, which
// installs them at frame boundary in Apply. Superseded kernels are
// released after the first successful call of their successor.
//
// Apply and Close must be called from the same goroutine.
type Host struct {
	mutable.Context
	source    string
	buildRoot string
	toolchain Toolchain
	loader    Loader
	watcher   Watcher
	log       logrus.FieldLogger
	metric    *metric.Metric
	onEvent   func(Event)

	state   atomic.Int32
	active  atomic.Int64 // version of active kernel
	version int          // last built version, owned by builder
	built   [sha256.Size]byte // source digest of the last build attempt
	pending mutable.Destination

	// owned by resynthesis goroutine
	current  *Module
	retiring *Module
	scratch  [][2]float32
	closing  bool

	releases sync.WaitGroup
}

// Option configures Host.
type Option func(*Host)

// WithToolchain sets toolchain and loader for kernel source. By default
// they're chosen by source extension.
func WithToolchain(t Toolchain, l Loader) Option {
	return func(h *Host) {
		h.toolchain = t
		h.loader = l
	}
}

// WithWatcher sets the source watcher. FSWatcher is used by default.
func WithWatcher(w Watcher) Option {
	return func(h *Host) {
		h.watcher = w
	}
}

// WithBuildRoot sets the directory for build directories.
func WithBuildRoot(dir string) Option {
	return func(h *Host) {
		h.buildRoot = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// WithMetric sets the metrics.
func WithMetric(m *metric.Metric) Option {
	return func(h *Host) {
		h.metric = m
	}
}

// WithEventHandler sets a handler of host events. Handler is called from
// different goroutines and must not block.
func WithEventHandler(fn func(Event)) Option {
	return func(h *Host) {
		h.onEvent = fn
	}
}

// NewHost returns host for kernel source. Empty source means no kernel
// is requested and identity is used for the whole run.
func NewHost(source string, opts ...Option) (*Host, error) {
	h := Host{
		Context:   mutable.Mutable(),
		buildRoot: filepath.Join(os.TempDir(), "vocoder-kernels"),
		pending:   mutable.NewDestination(),
		log:       log.Discard(),
	}
	for _, opt := range opts {
		opt(&h)
	}
	if source == "" {
		return &h, nil
	}

	var err error
	if h.source, err = filepath.Abs(source); err != nil {
		return nil, err
	}
	if h.toolchain == nil || h.loader == nil {
		if h.toolchain, h.loader, err = ForSource(source); err != nil {
			return nil, err
		}
	}
	if h.watcher == nil {
		h.watcher = FSWatcher{Log: h.log}
	}
	h.log = h.log.WithField("kernel", h.source)
	h.state.Store(int32(Active))
	return &h, nil
}

// State returns the state of the host.
func (h *Host) State() State {
	return State(h.state.Load())
}

// Version returns the version of active kernel. Zero means identity.
func (h *Host) Version() int {
	return int(h.active.Load())
}

// Init builds and loads the kernel for the first time. If source fails
// to compile, identity stays active and the error is only reported. Load
// errors are returned, since the toolchain produced a module that can't
// be used.
func (h *Host) Init(ctx context.Context) error {
	if h.source == "" {
		return nil
	}
	// edits made during the first build are picked up by Watch
	h.built, _ = digest(h.source)
	m, err := h.build(ctx)
	if err != nil {
		var errLoad *LoadError
		if errors.As(err, &errLoad) {
			return err
		}
		h.failed(err)
		return nil
	}
	h.emit(Event{Kind: BuildSucceeded, Version: m.Version})
	h.current = m
	h.active.Store(int64(m.Version))
	h.metric.KernelSwap(m.Version)
	h.log.WithField("version", m.Version).Info("kernel loaded")
	h.emit(Event{Kind: Swapped, Version: m.Version})
	return nil
}

// Watch rebuilds the kernel every time its source changes. If the source
// was changed after Init read it, the kernel is rebuilt right away. It
// blocks until ctx is done. Build and load failures are reported and the
// previous kernel stays active.
func (h *Host) Watch(ctx context.Context) error {
	if h.source == "" {
		return nil
	}
	changes, err := h.watcher.Watch(ctx, h.source)
	if err != nil {
		h.log.WithError(err).Error("kernel source isn't watched")
		return nil
	}
	h.rebuild(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			h.rebuild(ctx)
		}
	}
}

// rebuild builds the source unless its content is the same as of the
// last build attempt.
func (h *Host) rebuild(ctx context.Context) {
	if sum, err := digest(h.source); err == nil {
		if sum == h.built {
			return
		}
		h.built = sum
	}
	h.state.Store(int32(Rebuilding))
	defer h.state.Store(int32(Active))

	h.log.Debug("kernel source changed")
	m, err := h.build(ctx)
	if err != nil {
		if ctx.Err() == nil {
			h.failed(err)
		}
		return
	}
	h.log.WithField("version", m.Version).Info("kernel rebuilt")
	h.pending.Put(h.Mutate(func() error {
		if h.closing {
			h.release(m)
			return nil
		}
		h.install(m)
		return nil
	}))
	h.emit(Event{Kind: BuildSucceeded, Version: m.Version})
}

// build compiles and loads the source in a new build directory.
func (h *Host) build(ctx context.Context) (*Module, error) {
	dir := filepath.Join(h.buildRoot, "kernel-"+xid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &BuildError{Source: h.source, Err: err}
	}
	started := time.Now()
	artifact, err := h.toolchain.Build(ctx, h.source, dir)
	if err != nil {
		os.RemoveAll(dir)
		h.metric.KernelBuild(metric.BuildFailed, time.Since(started))
		var errBuild *BuildError
		if !errors.As(err, &errBuild) {
			err = &BuildError{Source: h.source, Err: err}
		}
		return nil, err
	}
	handle, err := h.loader.Load(artifact)
	if err != nil {
		os.RemoveAll(dir)
		h.metric.KernelBuild(metric.LoadFailed, time.Since(started))
		var errLoad *LoadError
		if !errors.As(err, &errLoad) {
			err = &LoadError{Artifact: artifact, Err: err}
		}
		return nil, err
	}
	h.metric.KernelBuild(metric.BuildSucceeded, time.Since(started))
	h.version++
	h.log.WithFields(logrus.Fields{
		"version":  h.version,
		"dir":      dir,
		"duration": time.Since(started),
	}).Debug("kernel built")
	return &Module{
		Source:   h.source,
		Version:  h.version,
		BuiltAt:  time.Now(),
		Dir:      dir,
		Artifact: artifact,
		apply:    handle.Func,
		close:    handle.Release,
	}, nil
}

func (h *Host) failed(err error) {
	var errBuild *BuildError
	if errors.As(err, &errBuild) {
		h.log.WithError(err).Error("kernel build failed")
		h.emit(Event{Kind: BuildFailed, Err: err})
		return
	}
	h.log.WithError(err).Error("kernel load failed")
	h.emit(Event{Kind: LoadFailed, Err: err})
}

// install makes the module active. Previous module is retired until the
// new one is invoked. If previous module was never invoked, it's released
// right away.
func (h *Host) install(m *Module) {
	prev := h.current
	h.current = m
	h.active.Store(int64(m.Version))
	h.metric.KernelSwap(m.Version)
	h.log.WithField("version", m.Version).Info("kernel swapped")
	h.emit(Event{Kind: Swapped, Version: m.Version})
	switch {
	case prev == nil:
	case !prev.invoked:
		h.release(prev)
	default:
		h.retiring = prev
	}
}

// Apply transforms every channel of the frame with the active kernel.
// Pending kernel is installed before the frame is processed, so all
// channels are transformed by the same kernel. Nil host is identity.
func (h *Host) Apply(f *spectral.Frame) error {
	if h == nil {
		return nil
	}
	if err := h.pending.Poll(h.Context); err != nil {
		return err
	}
	m := h.current
	if m == nil {
		return nil
	}
	for c := range f.Bins {
		in := h.pairs(f.Bins[c])
		out := m.apply(f.ElapsedMs, in)
		if len(out) != len(in) {
			return fmt.Errorf("%w: version %d returned %d bins, want %d", ErrFrameLength, m.Version, len(out), len(in))
		}
		for i, v := range out {
			f.Bins[c][i] = complex(float64(v[0]), float64(v[1]))
		}
	}
	m.invoked = true
	if h.retiring != nil {
		h.release(h.retiring)
		h.retiring = nil
	}
	return nil
}

// pairs converts bins into scratch buffer of float32 pairs.
func (h *Host) pairs(bins []complex128) [][2]float32 {
	if cap(h.scratch) < len(bins) {
		h.scratch = make([][2]float32, len(bins))
	}
	h.scratch = h.scratch[:len(bins)]
	for i, v := range bins {
		h.scratch[i] = [2]float32{float32(real(v)), float32(imag(v))}
	}
	return h.scratch
}

// release unloads the module in background.
func (h *Host) release(m *Module) {
	h.releases.Add(1)
	go func() {
		defer h.releases.Done()
		l := h.log.WithField("version", m.Version)
		if err := m.release(); err != nil {
			l.WithError(err).Warn("kernel release failed")
		} else {
			l.Debug("kernel released")
		}
		h.emit(Event{Kind: Released, Version: m.Version})
	}()
}

// Close releases all modules, including the ones that were built but
// never installed. It must be called after Watch returned and no more
// frames are applied.
func (h *Host) Close() error {
	if h == nil {
		return nil
	}
	h.closing = true
	err := h.pending.Poll(h.Context)
	for _, m := range []*Module{h.current, h.retiring} {
		if m != nil {
			h.release(m)
		}
	}
	h.current, h.retiring = nil, nil
	h.releases.Wait()
	return err
}

func (h *Host) emit(e Event) {
	if h.onEvent != nil {
		h.onEvent(e)
	}
}
