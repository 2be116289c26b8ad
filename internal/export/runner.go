package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pallet-cubing-backend/internal/share"
	"pallet-cubing-backend/internal/store"
)

// ErrBusy is returned by Submit while the runner is at capacity.
var ErrBusy = errors.New("an export is already running")

// ErrNoRecords means the trailer has nothing to export.
var ErrNoRecords = errors.New("trailer has no pallet records")

// JobStatus is the lifecycle stage of an export job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one trailer export. It only reads pallet records.
type Job struct {
	ID         string     `json:"id"`
	Trailer    string     `json:"trailer"`
	Terminal   string     `json:"terminal"`
	Status     JobStatus  `json:"status"`
	Path       string     `json:"path,omitempty"`
	Rows       int        `json:"rows"`
	Shared     bool       `json:"shared"`
	ShareError string     `json:"share_error,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the job reached a final state.
func (j Job) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}

// JobRetention is how long a finished job stays queryable.
const JobRetention = 24 * time.Hour

// Runner renders and shares exports on a small pool of background workers so
// the interactive API never waits on file or network I/O.
type Runner struct {
	size    int
	jobs    chan string
	store   store.Store
	sharer  share.Sharer
	dir     string
	timeout time.Duration
	keep    time.Duration
	now     func() time.Time

	mu     sync.Mutex
	byID   map[string]*Job
	latest map[string]string // trailer -> newest job id
	active int
}

// NewRunner creates a new export runner.
func NewRunner(size int, s store.Store, sharer share.Sharer, dir string, timeout time.Duration) *Runner {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Runner{
		size:    size,
		jobs:    make(chan string, size), // Buffered channel
		store:   s,
		sharer:  sharer,
		dir:     dir,
		timeout: timeout,
		keep:    JobRetention,
		now:     time.Now,
		byID:    make(map[string]*Job),
		latest:  make(map[string]string),
	}
}

// Start launches the worker goroutines.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.size; i++ {
		go r.worker(ctx, i)
	}
}

func (r *Runner) worker(ctx context.Context, id int) {
	log.Printf("Export worker %d started", id)
	for {
		select {
		case jobID := <-r.jobs:
			log.Printf("Export worker %d processing job %s", id, jobID)
			r.run(ctx, jobID)
		case <-ctx.Done():
			log.Printf("Export worker %d shutting down", id)
			return
		}
	}
}

// Submit queues an export of trailer. It never blocks.
func (r *Runner) Submit(trailer, terminal string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active >= r.size {
		return Job{}, ErrBusy
	}
	r.prune()

	job := &Job{
		ID:        uuid.NewString(),
		Trailer:   trailer,
		Terminal:  terminal,
		Status:    JobPending,
		CreatedAt: r.now(),
	}
	select {
	case r.jobs <- job.ID:
	default:
		return Job{}, ErrBusy
	}
	r.byID[job.ID] = job
	r.latest[trailer] = job.ID
	r.active++
	return *job, nil
}

// Job returns a copy of the job with the given id.
func (r *Runner) Job(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.byID[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// LatestForTrailer returns the newest job submitted for trailer.
func (r *Runner) LatestForTrailer(trailer string) (Job, bool) {
	r.mu.Lock()
	id, ok := r.latest[trailer]
	r.mu.Unlock()
	if !ok {
		return Job{}, false
	}
	return r.Job(id)
}

// prune drops finished jobs older than the retention window. Callers hold mu.
func (r *Runner) prune() {
	cutoff := r.now().Add(-r.keep)
	for id, j := range r.byID {
		if j.FinishedAt == nil || !j.FinishedAt.Before(cutoff) {
			continue
		}
		delete(r.byID, id)
		if r.latest[j.Trailer] == id {
			delete(r.latest, j.Trailer)
		}
	}
}

func (r *Runner) update(id string, fn func(j *Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		fn(job)
	}
}

func (r *Runner) run(ctx context.Context, id string) {
	job, ok := r.Job(id)
	if !ok {
		return
	}
	r.update(id, func(j *Job) { j.Status = JobRunning })

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	path, rows, err := r.write(ctx, job.Trailer)
	var shareErr error
	if err == nil && r.sharer != nil {
		shareErr = r.sharer.Share(ctx, share.NewArtifact(job.Trailer, job.Terminal, path, FileName(job.Trailer), rows))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	j := r.byID[id]
	finished := r.now()
	j.FinishedAt = &finished
	if err != nil {
		log.Printf("Export of trailer %s failed: %v", job.Trailer, err)
		j.Status = JobFailed
		j.Error = err.Error()
		return
	}
	j.Status = JobDone
	j.Path = path
	j.Rows = rows
	if shareErr != nil {
		// The file exists, so the export still counts as done.
		log.Printf("Export of trailer %s written to %s but not shared: %v", job.Trailer, path, shareErr)
		j.ShareError = shareErr.Error()
		return
	}
	j.Shared = true
}

// write renders the trailer's records to its export file.
func (r *Runner) write(ctx context.Context, trailer string) (string, int, error) {
	records, err := r.store.ExportRecordsByTrailer(ctx, trailer)
	if err != nil {
		return "", 0, err
	}
	if len(records) == 0 {
		return "", 0, fmt.Errorf("%w: %s", ErrNoRecords, trailer)
	}

	path, err := WriteFile(r.dir, trailer, records)
	if err != nil {
		return "", 0, err
	}
	log.Printf("Exported %d records for trailer %s to %s", len(records), trailer, path)
	return path, len(records), nil
}
