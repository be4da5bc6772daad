package scheduler

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"KeplerLens/internal/model"
	"KeplerLens/internal/pipeline"
)

// Scheduler re-runs a fixed set of jobs on a cron schedule.
type Scheduler struct {
	Cron        *cron.Cron
	Runner      *pipeline.Runner
	Jobs        []pipeline.Job
	MaxParallel int
	Ctx         context.Context

	batch sync.Mutex     // held while a batch runs
	bg    sync.WaitGroup // batches started by RunNowAsync
}

// NewScheduler creates a new Scheduler. A tick that fires while another batch
// is still running is skipped.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, jobs []pipeline.Job, maxParallel int) *Scheduler {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Runner:      runner,
		Jobs:        jobs,
		MaxParallel: maxParallel,
		Ctx:         ctx,
	}
}

// Register adds the job batch under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return errors.Wrapf(err, "register jobs on %q", spec)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("[INFO] scheduler started with %d job(s)", len(s.Jobs))
}

// Stop stops the cron scheduler and waits for running batches, scheduled or
// started by RunNowAsync, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.bg.Wait()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes every job immediately, waiting for any batch in progress.
func (s *Scheduler) RunNow() []*model.RunRecord {
	s.batch.Lock()
	defer s.batch.Unlock()
	return s.RunAll(s.Ctx)
}

// RunNowAsync starts RunNow in the background. Stop waits for it.
func (s *Scheduler) RunNowAsync() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.RunNow()
	}()
}

func (s *Scheduler) tick() {
	if !s.batch.TryLock() {
		log.Println("[WARN] previous batch still running, skipping scheduled run")
		return
	}
	defer s.batch.Unlock()

	log.Println("[INFO] running scheduled jobs")
	runs := s.RunAll(s.Ctx)
	ok := 0
	for _, r := range runs {
		if r != nil && r.Status == model.RunSucceeded {
			ok++
		}
	}
	log.Printf("[INFO] scheduled batch done: %d/%d succeeded", ok, len(s.Jobs))
}

// RunAll runs every job, at most MaxParallel at a time, and returns the run
// records in job order. A failing job does not stop the others; jobs not
// started before ctx is cancelled have a nil record.
func (s *Scheduler) RunAll(ctx context.Context) []*model.RunRecord {
	runs := make([]*model.RunRecord, len(s.Jobs))

	var g errgroup.Group
	g.SetLimit(s.MaxParallel)
	for i, job := range s.Jobs {
		if ctx.Err() != nil {
			log.Printf("[WARN] batch cancelled, skipping %d job(s)", len(s.Jobs)-i)
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			run, err := s.Runner.Run(ctx, job)
			if err != nil {
				log.Printf("[ERROR] job %s: %v", job.Name, err)
			}
			runs[i] = run
			return nil
		})
	}
	_ = g.Wait()
	return runs
}
