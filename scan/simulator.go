// Package scan fakes a code scan: it walks the selected files one at a
// time with an artificial delay and then yields the fixed demo result.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"fixxer/models"
	"fixxer/upload"

	"github.com/google/uuid"
)

var ErrNoFiles = errors.New("no files selected")

// Default timings for a simulated scan.
const (
	DefaultMinDelay    = 1 * time.Second
	DefaultJitter      = 2 * time.Second
	DefaultSettleDelay = 1 * time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Simulator runs scan jobs. A zero Jitter disables randomization.
type Simulator struct {
	MinDelay    time.Duration
	Jitter      time.Duration
	SettleDelay time.Duration
	Sleep       Sleeper
	Now         func() time.Time
	Logger      *slog.Logger

	// OnComplete is called once per finished job, after the result is set.
	OnComplete func(job *Job)
}

func NewSimulator(logger *slog.Logger) *Simulator {
	return &Simulator{
		MinDelay:    DefaultMinDelay,
		Jitter:      DefaultJitter,
		SettleDelay: DefaultSettleDelay,
		Sleep:       sleep,
		Now:         time.Now,
		Logger:      logger,
	}
}

// Start creates a job for files and runs it in the background. The job is
// detached from any request context so leaving the page does not stop it.
func (s *Simulator) Start(files []upload.File) (*Job, error) {
	job, err := NewJob(files)
	if err != nil {
		return nil, err
	}
	go s.Run(context.Background(), job)
	return job, nil
}

// Run walks the job's files sequentially and then emits the mock result.
func (s *Simulator) Run(ctx context.Context, job *Job) {
	logger := s.logger().With("job", job.ID)
	logger.Info("scan started", "files", len(job.files))

	total := len(job.files)
	for i := 0; i < total; i++ {
		job.setStatus(i, upload.StatusScanning)
		if err := s.sleeper()(ctx, s.delay()); err != nil {
			job.setStatus(i, upload.StatusError)
			job.finish(nil)
			logger.Warn("scan interrupted", "error", err)
			return
		}
		job.setStatus(i, upload.StatusComplete)
		job.setProgress(float64(i+1) / float64(total) * 100)
		logger.Debug("file scanned", "file", job.files[i].Name, "index", i+1, "total", total)
	}

	if err := s.sleeper()(ctx, s.SettleDelay); err != nil {
		job.finish(nil)
		logger.Warn("scan interrupted", "error", err)
		return
	}

	result := models.MockScanResult(s.now())
	job.finish(&result)
	logger.Info("scan complete", "overall_score", result.OverallScore, "issues", len(result.Issues))

	if s.OnComplete != nil {
		s.OnComplete(job)
	}
}

func (s *Simulator) delay() time.Duration {
	if s.Jitter <= 0 {
		return s.MinDelay
	}
	return s.MinDelay + rand.N(s.Jitter)
}

func (s *Simulator) sleeper() Sleeper {
	if s.Sleep == nil {
		return sleep
	}
	return s.Sleep
}

func (s *Simulator) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Simulator) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Job is one simulated scan.
type Job struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	files    []upload.File
	progress float64
	result   *models.ScanResult
	done     bool
	doneCh   chan struct{}
}

// NewJob copies files into a new job with every file pending.
func NewJob(files []upload.File) (*Job, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	own := make([]upload.File, len(files))
	for i, f := range files {
		f.Status = upload.StatusPending
		own[i] = f
	}
	return &Job{
		ID:      uuid.NewString(),
		Created: time.Now(),
		files:   own,
		doneCh:  make(chan struct{}),
	}, nil
}

// Snapshot is a point-in-time copy of a job.
type Snapshot struct {
	ID       string             `json:"jobId"`
	Files    []upload.File      `json:"files"`
	Progress float64            `json:"progress"`
	Done     bool               `json:"done"`
	Result   *models.ScanResult `json:"result,omitempty"`
}

// Percent is the rounded progress for display.
func (s Snapshot) Percent() int {
	return int(s.Progress + 0.5)
}

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	files := make([]upload.File, len(j.files))
	copy(files, j.files)
	return Snapshot{
		ID:       j.ID,
		Files:    files,
		Progress: j.progress,
		Done:     j.done,
		Result:   j.result,
	}
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

func (j *Job) setStatus(i int, st upload.Status) {
	j.mu.Lock()
	j.files[i].Status = st
	j.mu.Unlock()
}

func (j *Job) setProgress(p float64) {
	j.mu.Lock()
	j.progress = p
	j.mu.Unlock()
}

func (j *Job) finish(result *models.ScanResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done {
		return
	}
	j.result = result
	j.done = true
	close(j.doneCh)
}
