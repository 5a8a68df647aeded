package report

type Report struct {
	Run      *RunReport      `json:"run,omitempty"`
	Pipeline *PipelineReport `json:"pipeline,omitempty"`
	Recovery *RecoveryReport `json:"recovery,omitempty"`
}
