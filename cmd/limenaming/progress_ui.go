package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lime-pipeline/limenaming/internal/app"
	"github.com/lime-pipeline/limenaming/internal/config"
	"github.com/lime-pipeline/limenaming/internal/domain"
)

var _ app.Observer = (*progressUI)(nil)

// progressUI 是一个简洁版的交互终端进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：app 层只发事件，CLI 决定如何展示
// - 裁决流水线是同步串行的，不需要 keepalive/ticker
type progressUI struct {
	w io.Writer

	startedAt time.Time
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "dry-run"
	modeHint := " (只裁决，不写回)"
	if eff.Apply {
		mode = "apply"
		modeHint = ""
	}

	taxonomy := eff.TaxonomyPath
	if strings.TrimSpace(taxonomy) == "" {
		taxonomy = "<内置词表>"
	}

	fmt.Fprintf(p.w, "[%s] limenaming reconcile (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  taxonomy: %s\n", taxonomy)
	fmt.Fprintf(p.w, "  thresholds: type=%.2f finish=%.2f\n", eff.MinTypeSimilarity, eff.MinFinishSimilarity)
	fmt.Fprintf(p.w, "  scope: objects=%s materials=%s collections=%s\n",
		onOff(eff.ScopeObjects), onOff(eff.ScopeMaterials), onOff(eff.ScopeCollections),
	)
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 backup/, cache/\n", formatStringListJSON(eff.ExcludeDirs))
	if eff.Apply {
		fmt.Fprintf(p.w, "  report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "validate":
		fmt.Fprintf(p.w, "校验: items=%d proposals=%d (%s)\n",
			intField(fields, "items"), intField(fields, "proposals"), formatShortDuration(dur),
		)
	case "decide":
		fmt.Fprintf(p.w, "裁决: accepted=%d normalized=%d review=%d skipped=%d failed=%d (%s)\n\n",
			intField(fields, "accepted"),
			intField(fields, "normalized"),
			intField(fields, "review"),
			intField(fields, "skipped"),
			intField(fields, "failed"),
			formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemDone(idx, total int, id domain.ItemID, res domain.ItemResult, dur time.Duration) {
	var status string
	switch res.Status {
	case domain.StatusAccepted:
		status = "OK"
	case domain.StatusNormalized:
		status = "NORM"
	case domain.StatusReview:
		status = "REVIEW"
	case domain.StatusSkipped:
		status = "SKIP"
	case domain.StatusFailed:
		status = "FAIL"
	default:
		status = strings.ToUpper(res.Status)
	}

	switch res.Status {
	case domain.StatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s: %s\n",
			idx+1, total, id, status, res.ErrorCode, truncate(res.ErrorMsg, 160),
		)
	case domain.StatusReview:
		note := res.Reason
		if len(res.Candidates) > 0 {
			note += " candidates=" + formatStringListJSON(res.Candidates)
		}
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s\n", idx+1, total, id, status, truncate(note, 200))
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s %s (%s)\n", idx+1, total, id, status, truncate(res.Reason, 120))
	default:
		name := res.ResolvedName
		if name == "" {
			name = res.TargetPath
		}
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s conf=%.2f\n", idx+1, total, id, status, name, res.Confidence)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
