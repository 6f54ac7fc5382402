package quality

import (
	"testing"

	"github.com/lime-pipeline/limenaming/internal/domain"
	"github.com/lime-pipeline/limenaming/internal/taxonomy"
)

func newScorer() *Scorer {
	idx := taxonomy.New([]taxonomy.Entry{
		{Type: "Metal", Aliases: []string{"Steel"}, Finishes: []string{"Rusty", "Brushed"}},
		{Type: "Wood", Finishes: []string{"Oak", "Polished"}},
	}, taxonomy.DefaultThresholds)
	return NewScorer(idx)
}

func TestScore_UnparseableIsNeedsRename(t *testing.T) {
	s := newScorer()
	// 宿主唯一化后缀剥掉后剩 "Metal"，不符合 MAT_* 模式。
	rep := s.Score("Metal.001", domain.ContextHints{})
	if rep.Label != domain.QualityNeedsRename {
		t.Fatalf("期望 NEEDS_RENAME，实际 %s", rep.Label)
	}
	if rep.Confidence != 1.0 {
		t.Fatalf("期望置信度 1.0，实际 %v", rep.Confidence)
	}
}

func TestScore_CorroboratedIsExcellent(t *testing.T) {
	s := newScorer()
	hints := domain.ContextHints{
		TextureBasenames: []string{"metal_rusty_basecolor.png"},
		ObjectHints:      []string{"Steel_Pipe"},
	}
	rep := s.Score("MAT_S1_Metal_Rusty_V01", hints)
	if rep.Label != domain.QualityExcellent {
		t.Fatalf("期望 EXCELLENT，实际 %s（reasons=%v）", rep.Label, rep.Reasons)
	}
	if rep.Parsed == nil || rep.Parsed.Finish != "Rusty" {
		t.Fatalf("Parsed 缺失或不符：%+v", rep.Parsed)
	}
}

func TestScore_NoCorroborationCapsAtAcceptable(t *testing.T) {
	s := newScorer()
	// 语法与词汇表都没问题，但场景侧零佐证：封顶 ACCEPTABLE（倾向少折腾）。
	rep := s.Score("MAT_Metal_Rusty_V01", domain.ContextHints{})
	if rep.Label != domain.QualityAcceptable {
		t.Fatalf("期望 ACCEPTABLE，实际 %s（conf=%v）", rep.Label, rep.Confidence)
	}
}

func TestScore_ValidButAlienVocabulary(t *testing.T) {
	s := newScorer()
	// Silicone 在固定词汇表内（能解析），但不在本次加载的 taxonomy 里，
	// finish 也无人认识：分数只剩底分，且无佐证 → NEEDS_RENAME。
	rep := s.Score("MAT_Silicone_Zzzz_V01", domain.ContextHints{})
	if rep.Label != domain.QualityNeedsRename {
		t.Fatalf("期望 NEEDS_RENAME，实际 %s（conf=%v）", rep.Label, rep.Confidence)
	}
}
