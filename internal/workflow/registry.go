package workflow

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the externally visible state of a run at one point in time.
// Snapshots are immutable: every transition publishes a fresh value, so a
// concurrent reader never observes a phase paired with an artifact or score
// from a different transition.
type Snapshot struct {
	RunID     uuid.UUID `json:"run_id"`
	Kind      string    `json:"kind"`
	Phase     Phase     `json:"phase"`
	Attempts  int       `json:"attempts"`
	Score     *float64  `json:"score,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
	Result    any       `json:"result,omitempty"`
	Error     *RunError `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registry tracks workflow runs by id. It is the only mutable state shared
// across runs; it is constructed at process start and injected into each
// engine so tests can use an isolated instance.
//
// Runs are never deleted by the registry itself; expiry is a collaborator's
// responsibility.
type Registry struct {
	runs     sync.Map // uuid.UUID -> *Snapshot
	observer func(Snapshot)
}

// NewRegistry creates an empty run registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetObserver installs a callback invoked with every published snapshot,
// including creation. Observers run on the publishing goroutine and must
// not block; persistence layers should hand off to their own worker. Call
// before any run is submitted.
func (r *Registry) SetObserver(observer func(Snapshot)) {
	r.observer = observer
}

// Get returns the current snapshot for a run, or ErrRunNotFound.
func (r *Registry) Get(id uuid.UUID) (Snapshot, error) {
	v, ok := r.runs.Load(id)
	if !ok {
		return Snapshot{}, &ErrRunNotFound{RunID: id}
	}
	return *v.(*Snapshot), nil
}

// List returns a snapshot of every known run, newest first.
func (r *Registry) List() []Snapshot {
	var out []Snapshot
	r.runs.Range(func(_, v any) bool {
		out = append(out, *v.(*Snapshot))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// create registers a new pending run and returns its snapshot.
func (r *Registry) create(kind string) Snapshot {
	now := time.Now()
	snap := &Snapshot{
		RunID:     uuid.New(),
		Kind:      kind,
		Phase:     PhasePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.runs.Store(snap.RunID, snap)
	if r.observer != nil {
		r.observer(*snap)
	}
	return *snap
}

// transition applies mutate to a copy of the current snapshot and publishes
// the result atomically. Only the run's own engine goroutine calls this, so
// read-copy-update without a per-key lock is safe.
func (r *Registry) transition(id uuid.UUID, mutate func(Snapshot) Snapshot) {
	v, ok := r.runs.Load(id)
	if !ok {
		return
	}
	next := mutate(*v.(*Snapshot))
	next.UpdatedAt = time.Now()
	r.runs.Store(id, &next)
	if r.observer != nil {
		r.observer(next)
	}
}
