package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/idle"
	"github.com/roach88/weft/internal/metrics"
	"github.com/roach88/weft/internal/store"
)

// journal records a session's passes in a SQLite store. A nil journal
// records nothing.
type journal struct {
	ctx      context.Context
	store    *store.Store
	recorder *store.Recorder
}

func openJournal(ctx context.Context, path string) (*journal, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &journal{ctx: ctx, store: st}, nil
}

func (j *journal) observe(snapshot func() string) []engine.Option {
	if j == nil {
		return nil
	}
	j.recorder = store.NewRecorder(j.ctx, j.store, snapshot)
	return []engine.Option{engine.WithObserver(j.recorder)}
}

func (j *journal) begin(rootID, label string) error {
	if j == nil {
		return nil
	}
	return j.store.WriteRoot(j.ctx, rootID, label)
}

func (j *journal) fail(err error) {
	if j == nil || j.recorder == nil || err == nil {
		return
	}
	j.recorder.RecordFailure(err)
}

// Close reports any write error the recorder collected and closes the store.
func (j *journal) Close() error {
	if j == nil {
		return nil
	}
	var werr error
	if j.recorder != nil {
		werr = j.recorder.Err()
	}
	return errors.Join(werr, j.store.Close())
}

// session is one engine root rendering into a fresh memory host.
type session struct {
	mem       *host.Memory
	container *host.Element
	root      *engine.Root
	journal   *journal
	logger    *slog.Logger
	commits   []engine.CommitRecord

	afterCommit func(engine.CommitRecord)
}

func newSession(logger *slog.Logger, j *journal, extra ...engine.Option) *session {
	s := &session{
		mem:     host.NewMemory(),
		journal: j,
		logger:  logger,
	}
	s.container = s.mem.Container("main")

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithObserver(engine.CommitObserverFunc(s.onCommit)),
	}
	opts = append(opts, j.observe(s.snapshot)...)
	opts = append(opts, extra...)
	s.root = engine.New(s.mem, opts...)
	return s
}

func (s *session) onCommit(rec engine.CommitRecord) {
	s.commits = append(s.commits, rec)
	if s.afterCommit != nil {
		s.afterCommit(rec)
	}
}

func (s *session) snapshot() string {
	snap, err := host.CanonicalSnapshot(s.container)
	if err != nil {
		return ""
	}
	return snap
}

func (s *session) last() (engine.CommitRecord, bool) {
	if len(s.commits) == 0 {
		return engine.CommitRecord{}, false
	}
	return s.commits[len(s.commits)-1], true
}

// flush completes the pending pass synchronously.
func (s *session) flush() error {
	err := s.root.Flush()
	s.journal.fail(err)
	return err
}

// drive runs the root on an idle loop with the given slice budget. next is
// called after every commit and stops the loop by returning false. The first
// failed pass also stops it. Returns the number of slices used.
func (s *session) drive(ctx context.Context, budget time.Duration, next func(*idle.Loop, engine.CommitRecord) bool) (int64, error) {
	var (
		loop    *idle.Loop
		failure error
	)
	loop = idle.NewLoop(
		idle.WithSliceBudget(budget),
		idle.WithLoopLogger(s.logger),
		idle.WithErrorHandler(func(err error) {
			if failure == nil {
				failure = err
				s.journal.fail(err)
			}
			loop.Stop()
		}),
	)
	s.afterCommit = func(rec engine.CommitRecord) {
		if !next(loop, rec) {
			loop.Stop()
		}
	}
	defer func() { s.afterCommit = nil }()

	s.root.Start(loop)
	if err := loop.Run(ctx); err != nil {
		return loop.Slices(), err
	}
	return loop.Slices(), failure
}

// metricsServer exposes a private Prometheus registry over HTTP.
type metricsServer struct {
	registry  *prometheus.Registry
	collector *metrics.Collector
	server    *http.Server
	addr      string
}

func startMetrics(addr string, logger *slog.Logger) (*metricsServer, error) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	ms := &metricsServer{registry: reg, collector: c}
	if addr == "" {
		return ms, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	ms.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	ms.addr = ln.Addr().String()

	go func() {
		if err := ms.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ms.addr)
	return ms, nil
}

func (ms *metricsServer) option() engine.Option {
	return engine.WithMetrics(ms.collector)
}

func (ms *metricsServer) Close() error {
	if ms.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return ms.server.Shutdown(ctx)
}

// Totals returns every counter in the registry, summed over label values.
func (ms *metricsServer) Totals() (map[string]float64, error) {
	families, err := ms.registry.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				totals[mf.GetName()] += c.GetValue()
			}
		}
	}
	return totals, nil
}
