package monitor_pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	GeneratorClaimFailures     *prometheus.Desc
	GeneratorTransientRetries  *prometheus.Desc
	GeneratorPermanentFailures *prometheus.Desc
	GeneratorDbFailures        *prometheus.Desc
	UploaderClaimFailures      *prometheus.Desc
	UploaderTransientRetries   *prometheus.Desc
	UploaderPermanentFailures  *prometheus.Desc
	UploaderDbFailures         *prometheus.Desc
	RevealerClaimFailures      *prometheus.Desc
	RevealerSubmitFailures     *prometheus.Desc
	RevealerRevertedBatches    *prometheus.Desc
	RevealerTimedOutBatches    *prometheus.Desc
	RevealerDbFailures         *prometheus.Desc
	RecoveryChainReadFailures  *prometheus.Desc
	RecoveryInsertFailures     *prometheus.Desc

	// State
	GeneratorTokensClaimed   *prometheus.Desc
	GeneratorTokensGenerated *prometheus.Desc
	GeneratorTokensFailed    *prometheus.Desc
	GeneratorFallbackPrompts *prometheus.Desc
	UploaderTokensClaimed    *prometheus.Desc
	UploaderTokensUploaded   *prometheus.Desc
	UploaderTokensFailed     *prometheus.Desc
	RevealerBatchesSubmitted *prometheus.Desc
	RevealerTokensRevealed   *prometheus.Desc
	RecoveryTokensRecovered  *prometheus.Desc
	RecoverySkippedDupes     *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		GeneratorClaimFailures:     prometheus.NewDesc("generator_claim_failures", "", nil, nil),
		GeneratorTransientRetries:  prometheus.NewDesc("generator_transient_retries", "", nil, nil),
		GeneratorPermanentFailures: prometheus.NewDesc("generator_permanent_failures", "", nil, nil),
		GeneratorDbFailures:        prometheus.NewDesc("generator_db_failures", "", nil, nil),
		UploaderClaimFailures:      prometheus.NewDesc("uploader_claim_failures", "", nil, nil),
		UploaderTransientRetries:   prometheus.NewDesc("uploader_transient_retries", "", nil, nil),
		UploaderPermanentFailures:  prometheus.NewDesc("uploader_permanent_failures", "", nil, nil),
		UploaderDbFailures:         prometheus.NewDesc("uploader_db_failures", "", nil, nil),
		RevealerClaimFailures:      prometheus.NewDesc("revealer_claim_failures", "", nil, nil),
		RevealerSubmitFailures:     prometheus.NewDesc("revealer_submit_failures", "", nil, nil),
		RevealerRevertedBatches:    prometheus.NewDesc("revealer_reverted_batches", "", nil, nil),
		RevealerTimedOutBatches:    prometheus.NewDesc("revealer_timed_out_batches", "", nil, nil),
		RevealerDbFailures:         prometheus.NewDesc("revealer_db_failures", "", nil, nil),
		RecoveryChainReadFailures:  prometheus.NewDesc("recovery_chain_read_failures", "", nil, nil),
		RecoveryInsertFailures:     prometheus.NewDesc("recovery_insert_failures", "", nil, nil),

		// State
		GeneratorTokensClaimed:   prometheus.NewDesc("generator_tokens_claimed", "", nil, nil),
		GeneratorTokensGenerated: prometheus.NewDesc("generator_tokens_generated", "", nil, nil),
		GeneratorTokensFailed:    prometheus.NewDesc("generator_tokens_failed", "", nil, nil),
		GeneratorFallbackPrompts: prometheus.NewDesc("generator_fallback_prompts", "", nil, nil),
		UploaderTokensClaimed:    prometheus.NewDesc("uploader_tokens_claimed", "", nil, nil),
		UploaderTokensUploaded:   prometheus.NewDesc("uploader_tokens_uploaded", "", nil, nil),
		UploaderTokensFailed:     prometheus.NewDesc("uploader_tokens_failed", "", nil, nil),
		RevealerBatchesSubmitted: prometheus.NewDesc("revealer_batches_submitted", "", nil, nil),
		RevealerTokensRevealed:   prometheus.NewDesc("revealer_tokens_revealed", "", nil, nil),
		RecoveryTokensRecovered:  prometheus.NewDesc("recovery_tokens_recovered", "", nil, nil),
		RecoverySkippedDupes:     prometheus.NewDesc("recovery_skipped_duplicates", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.GeneratorClaimFailures
	ch <- self.GeneratorTransientRetries
	ch <- self.GeneratorPermanentFailures
	ch <- self.GeneratorDbFailures
	ch <- self.UploaderClaimFailures
	ch <- self.UploaderTransientRetries
	ch <- self.UploaderPermanentFailures
	ch <- self.UploaderDbFailures
	ch <- self.RevealerClaimFailures
	ch <- self.RevealerSubmitFailures
	ch <- self.RevealerRevertedBatches
	ch <- self.RevealerTimedOutBatches
	ch <- self.RevealerDbFailures
	ch <- self.RecoveryChainReadFailures
	ch <- self.RecoveryInsertFailures

	// State
	ch <- self.GeneratorTokensClaimed
	ch <- self.GeneratorTokensGenerated
	ch <- self.GeneratorTokensFailed
	ch <- self.GeneratorFallbackPrompts
	ch <- self.UploaderTokensClaimed
	ch <- self.UploaderTokensUploaded
	ch <- self.UploaderTokensFailed
	ch <- self.RevealerBatchesSubmitted
	ch <- self.RevealerTokensRevealed
	ch <- self.RecoveryTokensRecovered
	ch <- self.RecoverySkippedDupes
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.GeneratorClaimFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.GeneratorClaimFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorTransientRetries, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.GeneratorTransientRetries.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorPermanentFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.GeneratorPermanentFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorDbFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.GeneratorDbFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderClaimFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.UploaderClaimFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderTransientRetries, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.UploaderTransientRetries.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderPermanentFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.UploaderPermanentFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderDbFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.UploaderDbFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerClaimFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.RevealerClaimFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerSubmitFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.RevealerSubmitFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerRevertedBatches, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.RevealerRevertedBatches.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerTimedOutBatches, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.RevealerTimedOutBatches.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerDbFailures, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.Errors.RevealerDbFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecoveryChainReadFailures, prometheus.CounterValue, float64(self.monitor.Report.Recovery.Errors.ChainReadFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecoveryInsertFailures, prometheus.CounterValue, float64(self.monitor.Report.Recovery.Errors.InsertFailures.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.GeneratorTokensClaimed, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.GeneratorTokensClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorTokensGenerated, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.GeneratorTokensGenerated.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorTokensFailed, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.GeneratorTokensFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.GeneratorFallbackPrompts, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.GeneratorFallbackPrompts.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderTokensClaimed, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.UploaderTokensClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderTokensUploaded, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.UploaderTokensUploaded.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploaderTokensFailed, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.UploaderTokensFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerBatchesSubmitted, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.RevealerBatchesSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.RevealerTokensRevealed, prometheus.CounterValue, float64(self.monitor.Report.Pipeline.State.RevealerTokensRevealed.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecoveryTokensRecovered, prometheus.CounterValue, float64(self.monitor.Report.Recovery.State.TokensRecovered.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecoverySkippedDupes, prometheus.CounterValue, float64(self.monitor.Report.Recovery.State.SkippedDuplicates.Load()))
}
