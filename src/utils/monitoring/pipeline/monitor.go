package monitor_pipeline

import (
	"time"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/monitoring/report"
	"github.com/mintforge/revealer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Reveal throughput history
	revealedCounts *deque.Deque[int64]

	// Moving average of tokens revealed per minute
	RevealedPerMinute float64
}

func NewMonitor(config *config.Config) (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:      &report.RunReport{},
		Pipeline: &report.PipelineReport{},
		Recovery: &report.RecoveryReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(config, "monitor").
		WithPeriodicSubtaskFunc(time.Second, self.updateUptime).
		WithPeriodicSubtaskFunc(time.Minute, self.monitorReveals)
	return
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.revealedCounts = deque.New[int64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func (self *Monitor) updateUptime() (err error) {
	self.Report.Run.State.UpForSeconds.Store(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load())
	return
}

// Measure reveal throughput
func (self *Monitor) monitorReveals() (err error) {
	loaded := self.Report.Pipeline.State.RevealerTokensRevealed.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.revealedCounts.PushBack(loaded)
	if self.revealedCounts.Len() > self.historySize {
		self.revealedCounts.PopFront()
	}
	self.RevealedPerMinute = float64(self.revealedCounts.Back()-self.revealedCounts.Front()) / float64(self.revealedCounts.Len())
	return
}
