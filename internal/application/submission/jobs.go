package submission

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/result"
)

// DefaultJobTTL is how long a finished or abandoned job stays addressable.
const DefaultJobTTL = 15 * time.Minute

// ErrJobNotFound is returned for unknown or expired job ids.
var ErrJobNotFound = errors.New("check job not found")

// JobsConfig configures a Jobs registry.
type JobsConfig struct {
	Schedule []time.Duration
	Timeout  time.Duration
	TTL      time.Duration
	// IsAuthLoss recognizes a failure caused by an invalidated session.
	IsAuthLoss func(error) bool
	// GenerateID and Now are injectable for tests.
	GenerateID func() string
	Now        func() time.Time
}

// Jobs tracks the web UI's in-flight submissions, one Pipeline per job.
type Jobs struct {
	checker Checker
	cfg     JobsConfig

	mu       sync.Mutex
	jobs     map[string]*Job
	handoffs map[result.ID]json.RawMessage
	wg       sync.WaitGroup
}

// Job is one submission started from the web form.
type Job struct {
	ID      string
	Mode    check.Mode
	Files   []string
	Created time.Time

	pipeline *Pipeline
	err      error
}

// JobView is a read-only snapshot for templates.
type JobView struct {
	ID       string
	Mode     check.Mode
	Files    []string
	State    check.State
	Stages   []check.Stage
	Message  string
	ResultID result.ID
	// AuthLost is set when the check failed because the session was invalidated.
	AuthLost bool
	Err      error
}

// NewJobs builds a registry that runs checks through checker.
func NewJobs(checker Checker, cfg JobsConfig) *Jobs {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultJobTTL
	}
	if cfg.GenerateID == nil {
		cfg.GenerateID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Jobs{
		checker:  checker,
		cfg:      cfg,
		jobs:     make(map[string]*Job),
		handoffs: make(map[result.ID]json.RawMessage),
	}
}

// Start validates req synchronously and, if valid, runs the check in the
// background. A *check.ValidationError means no job was created.
// PRE: none
// POST: returns the running job, or the validation error
func (j *Jobs) Start(req check.Request) (*Job, error) {
	p := New(j.checker, Options{Schedule: j.cfg.Schedule, Timeout: j.cfg.Timeout})
	if err := p.Begin(req); err != nil {
		return nil, err
	}
	job := &Job{
		ID:       j.cfg.GenerateID(),
		Mode:     req.Mode,
		Created:  j.cfg.Now(),
		pipeline: p,
	}
	for _, f := range req.Files() {
		job.Files = append(job.Files, f.Name)
	}

	j.mu.Lock()
	j.sweepLocked()
	j.jobs[job.ID] = job
	j.mu.Unlock()

	j.run(job)
	slog.Info("check_event", "event", "job_started", "job_id", job.ID, "mode", job.Mode)
	return job, nil
}

// run awaits the pipeline on a background goroutine.
func (j *Jobs) run(job *Job) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		out, err := job.pipeline.Await(context.Background())
		j.mu.Lock()
		defer j.mu.Unlock()
		job.err = err
		if err == nil && out.ResultID() != "" {
			j.handoffs[out.ResultID()] = out.Payload
		}
	}()
}

// Get returns a snapshot of job id.
func (j *Jobs) Get(id string) (JobView, error) {
	j.mu.Lock()
	job, ok := j.jobs[id]
	var err error
	if ok {
		err = job.err
	}
	j.mu.Unlock()
	if !ok {
		return JobView{}, ErrJobNotFound
	}

	p := job.pipeline
	v := JobView{
		ID:      job.ID,
		Mode:    job.Mode,
		Files:   job.Files,
		State:   p.State(),
		Stages:  p.Stages(),
		Message: p.Message(),
		Err:     err,
	}
	if out, done := p.Outcome(); done {
		v.ResultID = out.ResultID()
	}
	if err != nil && j.cfg.IsAuthLoss != nil {
		v.AuthLost = j.cfg.IsAuthLoss(err)
	}
	return v, nil
}

// Retry resubmits a failed job's retained files.
// PRE: job is IDLE after a failure
// POST: job is PROCESSING again
func (j *Jobs) Retry(id string) error {
	j.mu.Lock()
	job, ok := j.jobs[id]
	if ok {
		job.err = nil
	}
	j.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	req, has := job.pipeline.Request()
	if !has {
		return ErrNoRetry
	}
	if err := job.pipeline.Begin(req); err != nil {
		return err
	}
	j.run(job)
	slog.Info("check_event", "event", "job_retried", "job_id", id)
	return nil
}

// Cancel detaches and forgets job id.
func (j *Jobs) Cancel(id string) error {
	j.mu.Lock()
	job, ok := j.jobs[id]
	delete(j.jobs, id)
	j.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	job.pipeline.Close()
	slog.Info("check_event", "event", "job_cancelled", "job_id", id)
	return nil
}

// CancelAll detaches every job. Used when the session ends.
func (j *Jobs) CancelAll() {
	j.mu.Lock()
	jobs := j.jobs
	j.jobs = make(map[string]*Job)
	j.handoffs = make(map[result.ID]json.RawMessage)
	j.mu.Unlock()
	for _, job := range jobs {
		job.pipeline.Close()
	}
}

// TakePayload returns, once, the raw payload a finished job produced for id.
func (j *Jobs) TakePayload(id result.ID) (json.RawMessage, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	p, ok := j.handoffs[id]
	delete(j.handoffs, id)
	return p, ok
}

// Wait blocks until every background call has returned.
func (j *Jobs) Wait() {
	j.wg.Wait()
}

// sweepLocked drops jobs past their TTL.
func (j *Jobs) sweepLocked() {
	cutoff := j.cfg.Now().Add(-j.cfg.TTL)
	for id, job := range j.jobs {
		if job.Created.Before(cutoff) {
			job.pipeline.Close()
			delete(j.jobs, id)
		}
	}
}
