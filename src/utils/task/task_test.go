package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mintforge/revealer/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

type TaskTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *TaskTestSuite) SetupSuite() {
	s.config = config.Default()
	s.config.StopTimeout = 5 * time.Second
	s.config.WorkerRestartDelay = 10 * time.Millisecond
}

func (s *TaskTestSuite) TestLifecycle() {
	var started, stopped atomic.Bool

	task := NewTask(s.config, "test-lifecycle").
		WithOnBeforeStart(func() error {
			started.Store(true)
			return nil
		}).
		WithOnAfterStop(func() {
			stopped.Store(true)
		}).
		WithPeriodicSubtaskFunc(10*time.Millisecond, func() error {
			return nil
		})

	err := task.Start()
	require.Nil(s.T(), err)
	require.True(s.T(), started.Load())

	time.Sleep(50 * time.Millisecond)
	task.StopWait()

	require.True(s.T(), stopped.Load())

	select {
	case <-task.CtxRunning.Done():
	default:
		s.T().Fatal("running context still open after StopWait")
	}
}

func (s *TaskTestSuite) TestRepeatedSubtaskSkipsPauseOnRepeat() {
	var calls atomic.Int64

	// A long period with repeat=true should still iterate many times
	task := NewTask(s.config, "test-repeat").
		WithRepeatedSubtaskFunc(time.Hour, func() (bool, error) {
			return calls.Add(1) < 10, nil
		})

	err := task.Start()
	require.Nil(s.T(), err)

	require.Eventually(s.T(), func() bool {
		return calls.Load() >= 10
	}, time.Second, 5*time.Millisecond)

	task.StopWait()
}

func (s *TaskTestSuite) TestRepeatedSubtaskSurvivesErrors() {
	var calls atomic.Int64

	task := NewTask(s.config, "test-restart").
		WithRepeatedSubtaskFunc(time.Hour, func() (bool, error) {
			if calls.Add(1) < 3 {
				return false, errors.New("iteration failed")
			}
			return true, nil
		})

	err := task.Start()
	require.Nil(s.T(), err)

	require.Eventually(s.T(), func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	task.StopWait()
}

func (s *TaskTestSuite) TestSubtasksStopWithParent() {
	var childRan atomic.Bool

	child := NewTask(s.config, "test-child").
		WithPeriodicSubtaskFunc(10*time.Millisecond, func() error {
			childRan.Store(true)
			return nil
		})

	parent := NewTask(s.config, "test-parent").
		WithSubtask(child)

	err := parent.Start()
	require.Nil(s.T(), err)

	require.Eventually(s.T(), func() bool {
		return childRan.Load()
	}, time.Second, 5*time.Millisecond)

	parent.StopWait()

	select {
	case <-child.CtxRunning.Done():
	default:
		s.T().Fatal("child still running after parent StopWait")
	}
}

func (s *TaskTestSuite) TestConditionalSubtask() {
	var enabledRan, disabledRan atomic.Bool

	enabled := NewTask(s.config, "test-enabled").
		WithPeriodicSubtaskFunc(10*time.Millisecond, func() error {
			enabledRan.Store(true)
			return nil
		})

	disabled := NewTask(s.config, "test-disabled").
		WithPeriodicSubtaskFunc(10*time.Millisecond, func() error {
			disabledRan.Store(true)
			return nil
		})

	parent := NewTask(s.config, "test-parent").
		WithConditionalSubtask(true, enabled).
		WithConditionalSubtask(false, disabled)

	err := parent.Start()
	require.Nil(s.T(), err)

	require.Eventually(s.T(), func() bool {
		return enabledRan.Load()
	}, time.Second, 5*time.Millisecond)

	parent.StopWait()
	require.False(s.T(), disabledRan.Load())
}

func (s *TaskTestSuite) TestWorkerPool() {
	var done atomic.Int64

	var submitted atomic.Bool
	task := NewTask(s.config, "test-pool").
		WithWorkerPool(2)
	task.WithSubtaskFunc(func() error {
		for i := 0; i < 5; i++ {
			task.SubmitToWorker(func() {
				done.Add(1)
			})
		}
		submitted.Store(true)
		<-task.StopChannel
		return nil
	})

	err := task.Start()
	require.Nil(s.T(), err)

	require.Eventually(s.T(), func() bool {
		return submitted.Load()
	}, time.Second, 5*time.Millisecond)

	// StopWait drains the pool
	task.StopWait()
	require.Equal(s.T(), int64(5), done.Load())
}
