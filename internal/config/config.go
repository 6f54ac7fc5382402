package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 limenaming.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// DefaultSceneStep 是场景号步长的内置默认值（1 = 不限制）。
	DefaultSceneStep = 1
	// maxSceneStep 是步长的合理上限；超出截断。
	maxSceneStep = 100
)

// CLIArgs 只包含 CLI 暴露的三项入口（path/taxonomy/apply），并保留"是否显式指定"的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string

	Taxonomy    string
	TaxonomySet bool

	Apply    bool
	ApplySet bool
}

// FileConfig 对应 limenaming.json 的解析结构。
type FileConfig struct {
	Path              string       `json:"path"`
	Taxonomy          string       `json:"taxonomy"`
	Apply             *bool        `json:"apply"`
	SceneStep         int          `json:"scene_step"`
	FreeSceneNumbers  *bool        `json:"free_scene_numbering"`
	MinTypeSimilarity *float64     `json:"min_type_similarity"`
	MinFinishSim      *float64     `json:"min_finish_similarity"`
	Scope             *ScopeConfig `json:"scope"`
	ExcludeDirs       []string     `json:"exclude_dirs"`
}

// ScopeConfig 是 apply-scope 三开关；缺省时三类全开。
type ScopeConfig struct {
	Objects     *bool `json:"objects"`
	Materials   *bool `json:"materials"`
	Collections *bool `json:"collections"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	// TaxonomyPath 为空表示使用内置 taxonomy。
	TaxonomyPath string
	Apply        bool

	SceneStep        int
	FreeSceneNumbers bool

	// MinTypeSimilarity/MinFinishSimilarity 为 0 表示不覆盖 taxonomy 文档内的阈值。
	MinTypeSimilarity   float64
	MinFinishSimilarity float64

	ScopeObjects     bool
	ScopeMaterials   bool
	ScopeCollections bool

	ExcludeDirs []string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按固定规则发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/limenaming.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/limenaming.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - taxonomy：CLI > config >（空 = 内置）
// - apply：CLI --apply/--apply=false > config > 默认 false
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
	)

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/limenaming.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath = filepath.Join(absPath, "limenaming.json")

		fc, _, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}

		return merge(absPath, cwdAbs, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/limenaming.json，且其中必须包含 path。
	cfgPath = filepath.Join(cwdAbs, "limenaming.json")
	var exists bool
	fc, exists, err = readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cwdAbs, cli, fc, cfgPath)
}

func merge(absPath, cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// taxonomy：CLI > config >（空）
	taxonomyPath := ""
	if cli.TaxonomySet {
		taxonomyPath = strings.TrimSpace(cli.Taxonomy)
	} else if strings.TrimSpace(fc.Taxonomy) != "" {
		taxonomyPath = strings.TrimSpace(fc.Taxonomy)
	}
	if taxonomyPath != "" {
		taxonomyPath = absCleanFrom(cwdAbs, taxonomyPath)
	}

	// apply：CLI > config > 默认 false
	apply := false
	if cli.ApplySet {
		apply = cli.Apply
	} else if fc.Apply != nil {
		apply = *fc.Apply
	}

	sceneStep := fc.SceneStep
	if sceneStep == 0 {
		sceneStep = DefaultSceneStep
	}
	if sceneStep < 1 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath,
			Err: fmt.Errorf("scene_step 必须 ≥1，实际是 %d", fc.SceneStep)}
	}
	if sceneStep > maxSceneStep {
		sceneStep = maxSceneStep
	}

	freeNumbers := false
	if fc.FreeSceneNumbers != nil {
		freeNumbers = *fc.FreeSceneNumbers
	}

	minType, err := similarityOverride("min_type_similarity", fc.MinTypeSimilarity)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	minFinish, err := similarityOverride("min_finish_similarity", fc.MinFinishSim)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// scope：缺省三类全开；给了 scope 块则缺省字段按 true 处理。
	objects, materials, collections := true, true, true
	if fc.Scope != nil {
		if fc.Scope.Objects != nil {
			objects = *fc.Scope.Objects
		}
		if fc.Scope.Materials != nil {
			materials = *fc.Scope.Materials
		}
		if fc.Scope.Collections != nil {
			collections = *fc.Scope.Collections
		}
	}

	return EffectiveConfig{
		Path:                absPath,
		TaxonomyPath:        taxonomyPath,
		Apply:               apply,
		SceneStep:           sceneStep,
		FreeSceneNumbers:    freeNumbers,
		MinTypeSimilarity:   minType,
		MinFinishSimilarity: minFinish,
		ScopeObjects:        objects,
		ScopeMaterials:      materials,
		ScopeCollections:    collections,
		ExcludeDirs:         append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

func similarityOverride(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if *v <= 0 || *v > 1 {
		return 0, fmt.Errorf("%s 必须落在 (0,1]，实际是 %v", field, *v)
	}
	return *v, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
