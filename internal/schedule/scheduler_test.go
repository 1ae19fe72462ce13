package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    int
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(_ context.Context) error {
	j.runs++
	close(j.started)
	<-j.release
	return nil
}

func TestRunGuarded_SkipsOverlappingRun(t *testing.T) {
	scheduler := NewCronScheduler()
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	fn := scheduler.runGuarded(job, "* * * * *")

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	<-job.started

	// The tick that fires mid-run returns without running the job.
	fn()
	require.Equal(t, 1, job.runs)

	close(job.release)
	<-done
	require.Equal(t, 1, job.runs)
}

func TestAddJob_RejectsBadSpec(t *testing.T) {
	scheduler := NewCronScheduler()
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	require.Error(t, scheduler.AddJob(job, "not a cron spec"))
	require.NoError(t, scheduler.AddJob(job, "*/30 * * * *"))
}
