package engine

// CommitRecord summarizes one commit.
type CommitRecord struct {
	RootID  string
	Pass    int64
	Units   int
	Effects []EffectRecord
}

// EffectRecord is one applied effect. Deletions come first, then placements
// and updates in pre-order.
type EffectRecord struct {
	Effect Effect
	Kind   string // "div", "#text", "<Counter>"
	Path   string // "div[0]/h1[0]/#text[1]"
}

// Count returns the number of effects of kind e.
func (c CommitRecord) Count(e Effect) int {
	n := 0
	for _, rec := range c.Effects {
		if rec.Effect == e {
			n++
		}
	}
	return n
}

// CommitObserver receives a record after every commit, on the goroutine that
// ran the tick.
type CommitObserver interface {
	OnCommit(rec CommitRecord)
}

// CommitObserverFunc adapts a function to CommitObserver.
type CommitObserverFunc func(CommitRecord)

// OnCommit implements CommitObserver.
func (f CommitObserverFunc) OnCommit(rec CommitRecord) { f(rec) }

// Metrics receives scheduler activity. internal/metrics provides a
// Prometheus implementation.
type Metrics interface {
	UnitDone()
	Yielded()
	Committed(rec CommitRecord)
	Abandoned()
	Failed(code PassErrorCode)
}

type nopMetrics struct{}

func (nopMetrics) UnitDone() {}
func (nopMetrics) Yielded() {}
func (nopMetrics) Committed(CommitRecord) {}
func (nopMetrics) Abandoned() {}
func (nopMetrics) Failed(PassErrorCode) {}
