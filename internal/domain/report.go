package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusAccepted   = "accepted"
	StatusNormalized = "normalized"
	StatusReview     = "review"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

const (
	ErrCodeBatchRejected  = "batch_rejected"
	ErrCodeTaxonomyFailed = "taxonomy_failed"
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
	ErrCodeIOFailed       = "io_failed"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	TaxonomyPath string `json:"taxonomy_path"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Accepted   int `json:"accepted"`
	Normalized int `json:"normalized"`
	Review     int `json:"review"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

type ItemResult struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	ExistingName string `json:"existing_name"`
	ResolvedName string `json:"resolved_name,omitempty"`
	TargetPath   string `json:"target_path,omitempty"`

	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	ErrorCode  string  `json:"error_code,omitempty"`
	ErrorMsg   string  `json:"error_msg,omitempty"`

	// Candidates 仅在路径 AMBIGUOUS 时非空（'/'-连接，已排序）。
	Candidates []string `json:"candidates,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 id 字典序；id=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].ID
		b := r.Items[j].ID
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusAccepted:
			s.Accepted++
		case StatusNormalized:
			s.Normalized++
		case StatusReview:
			s.Review++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
