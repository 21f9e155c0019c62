package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastScheduler(approve Approver, isKilled func() bool) *Scheduler {
	minInterval = 20 * time.Millisecond
	tickInterval = 5 * time.Millisecond
	return New(approve, isKilled)
}

func TestAddRejectsShortInterval(t *testing.T) {
	s := fastScheduler(nil, nil)
	err := s.Add("t1", "echo hi", "", time.Millisecond, 0)
	require.Error(t, err)
}

func TestAddRejectsDuplicateName(t *testing.T) {
	s := fastScheduler(func(string) (bool, string) { return true, "" }, func() bool { return false })
	require.NoError(t, s.Add("t1", "echo hi", "", minInterval, 1))
	err := s.Add("t1", "echo hi", "", minInterval, 1)
	require.Error(t, err)
}

func TestRunSkippedWhenKilled(t *testing.T) {
	s := fastScheduler(func(string) (bool, string) { return true, "" }, func() bool { return true })
	require.NoError(t, s.Add("killed-task", "echo hi", "", minInterval, 1))

	require.Eventually(t, func() bool {
		hist, err := s.History("killed-task")
		return err == nil && len(hist) > 0 && hist[0].Outcome == RunSkipped
	}, time.Second, 5*time.Millisecond)
}

func TestRunSkippedWhenSafetyDenies(t *testing.T) {
	s := fastScheduler(func(string) (bool, string) { return false, "blocked command" }, func() bool { return false })
	require.NoError(t, s.Add("denied-task", "rm -rf /", "", minInterval, 1))

	require.Eventually(t, func() bool {
		hist, err := s.History("denied-task")
		return err == nil && len(hist) > 0 && hist[0].Outcome == RunSkipped && hist[0].Error == "blocked command"
	}, time.Second, 5*time.Millisecond)
}

func TestRemove(t *testing.T) {
	s := fastScheduler(func(string) (bool, string) { return true, "" }, func() bool { return false })
	require.NoError(t, s.Add("t1", "echo hi", "", minInterval, 0))
	require.NoError(t, s.Remove("t1"))
	require.Error(t, s.Remove("t1"))
}

func TestNames(t *testing.T) {
	s := fastScheduler(func(string) (bool, string) { return true, "" }, func() bool { return false })
	require.NoError(t, s.Add("t1", "echo hi", "", minInterval, 0))
	require.Contains(t, s.Names(), "t1")
}
