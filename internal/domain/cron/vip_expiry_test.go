package cron

import (
	"testing"
	"time"

	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestVIPExpiryCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	job, err := NewVIPExpiryCronJob(repository.NewUserRepository(), "*/5 * * * *")
	require.NoError(t, err)
	job.now = func() time.Time { return now }

	require.True(t, job.RunNow())
	require.Equal(t, time.Date(2024, 5, 10, 8, 5, 0, 0, time.UTC), job.Next())

	job.Do(ctx)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User3.ID)
	require.NoError(t, err)
	require.False(t, user.IsVIPActive)

	_, err = NewVIPExpiryCronJob(repository.NewUserRepository(), "every minute")
	require.Error(t, err)
}

func TestCronJobManager_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	job, err := NewVIPExpiryCronJob(repository.NewUserRepository(), "@every 1h")
	require.NoError(t, err)

	m := NewCronJobManager()
	m.Register(job)

	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.jobs[job] != nil
	}, time.Second, 10*time.Millisecond)

	m.Cancel(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}

func TestCronJobManager_CancelBeforeStart(t *testing.T) {
	ctx := testutil.MockContext()
	job, err := NewVIPExpiryCronJob(repository.NewUserRepository(), "@every 1h")
	require.NoError(t, err)

	m := NewCronJobManager()
	m.Register(job)

	require.NotPanics(t, func() { m.Cancel(ctx) })
	require.NotPanics(t, func() { m.Cancel(ctx) })

	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager started after cancel")
	}
}
