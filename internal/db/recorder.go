package db

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/daniel/webtoon-agent/internal/workflow"
)

// Recorder mirrors registry snapshots into the database on a worker
// goroutine. Persistence is best-effort: a failed write is logged and the
// run continues, because the in-memory registry still holds the live
// state.
type Recorder struct {
	db    *DB
	snaps chan workflow.Snapshot
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewRecorder starts a recorder over an open database. Wire its Observe
// method into the registry before submitting runs.
func NewRecorder(db *DB) *Recorder {
	r := &Recorder{
		db:    db,
		snaps: make(chan workflow.Snapshot, 256),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Observe enqueues a snapshot for persistence without blocking the
// publishing goroutine. Snapshots are dropped with a warning when the
// queue is full or the recorder has been closed; engine runs outlive the
// recorder during shutdown, so late publishes must stay safe.
func (r *Recorder) Observe(snap workflow.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		log.Printf("db: recorder closed, dropping snapshot for run %s", snap.RunID)
		return
	}
	select {
	case r.snaps <- snap:
	default:
		log.Printf("db: persistence queue full, dropping snapshot for run %s", snap.RunID)
	}
}

// Close drains pending snapshots and stops the worker. Safe to call while
// observers are still publishing; later Observe calls become drops.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	// No Observe can be mid-send here: sends hold the mutex and check the
	// closed flag first.
	close(r.snaps)
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for snap := range r.snaps {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		r.persist(ctx, snap)
		cancel()
	}
}

func (r *Recorder) persist(ctx context.Context, snap workflow.Snapshot) {
	rec := newRunRecord(snap)
	if err := r.db.UpsertRun(ctx, rec); err != nil {
		log.Printf("db: failed to persist run %s: %v", snap.RunID, err)
		return
	}

	if snap.Phase.Terminal() && snap.Result != nil {
		if err := r.db.SaveArtifact(ctx, snap.RunID, snap.Kind, snap.Result); err != nil {
			log.Printf("db: failed to persist artifact for run %s: %v", snap.RunID, err)
		}
	}
}

// newRunRecord maps a registry snapshot onto the persisted row shape.
func newRunRecord(snap workflow.Snapshot) *RunRecord {
	rec := &RunRecord{
		ID:        snap.RunID,
		Kind:      snap.Kind,
		Phase:     string(snap.Phase),
		Attempts:  snap.Attempts,
		Score:     snap.Score,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.Feedback != "" {
		feedback := snap.Feedback
		rec.Feedback = &feedback
	}
	if snap.Error != nil {
		category := string(snap.Error.Category)
		message := snap.Error.Message
		rec.ErrorCategory = &category
		rec.ErrorMessage = &message
	}
	return rec
}
