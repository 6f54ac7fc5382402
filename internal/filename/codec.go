// Package filename 实现规范工程文件名的编解码：
// {ProjectName}_{Token}_SC{###}_Rev_{Letter}（BaseModel/Tmp 不带 SC 段）。
//
// 这是对外的磁盘命名契约，外部工具和人都直接读这些名字，
// 因此编码输出必须与文档的模式逐字节一致。
package filename

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

const (
	// ErrCodeUnrecognizedToken 表示名字里找不到任何已知类型 token。
	ErrCodeUnrecognizedToken = "unrecognized_token"
	// ErrCodeMalformedScene 表示 SC 段存在但不是 3 位数字，或超出 1–999，
	// 或与类型的 SC 要求矛盾（该带不带 / 不该带却带）。
	ErrCodeMalformedScene = "malformed_scene_number"
	// ErrCodeMalformedRevision 表示修订段不是单个 A–Z 字母。
	ErrCodeMalformedRevision = "malformed_revision"
	// ErrCodeSceneStep 表示 SC 号不满足步长策略（free_scene_numbering 关闭时）。
	ErrCodeSceneStep = "scene_step_violation"
	// ErrCodeEmptyProject 表示记录缺少项目名。
	ErrCodeEmptyProject = "empty_project_name"
)

// Error 是编解码阶段的结构化错误（带 error_code，永远能向人报出具体原因）。
type Error struct {
	Code string
	Name string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeUnrecognizedToken:
		return fmt.Sprintf("%s：%q 中没有已知类型 token", e.Code, e.Name)
	case ErrCodeMalformedScene:
		return fmt.Sprintf("%s：%q 的 SC 段非法", e.Code, e.Name)
	case ErrCodeMalformedRevision:
		return fmt.Sprintf("%s：%q 的修订段必须是单个 A–Z 字母", e.Code, e.Name)
	case ErrCodeSceneStep:
		return fmt.Sprintf("%s：%q 的 SC 号不满足步长策略", e.Code, e.Name)
	case ErrCodeEmptyProject:
		return fmt.Sprintf("%s：项目名为空", e.Code)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrCode 从 error 中提取 error_code；若不是 *Error 则返回空串。
func ErrCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Policy 是 SC 号的编号策略。
type Policy struct {
	// SceneStep 是 SC 号必须满足的步长（SC010/SC020 约定）。
	SceneStep int
	// FreeSceneNumbering 打开后不检查步长。
	FreeSceneNumbering bool
}

// DefaultPolicy 是管线默认：步长 1（即不约束具体间隔）。
// 需要 SC010/SC020 式编号的项目在配置里把步长调成 10。
var DefaultPolicy = Policy{SceneStep: 1}

// Codec 持有策略；零值可用（零值等于不检查步长）。
type Codec struct {
	Policy Policy
}

// tokenAlt 由固定映射表生成，保证编码与解析用同一词汇表。
var tokenAlt = func() string {
	toks := make([]string, 0, 6)
	for _, t := range []domain.FileType{
		domain.FileTypeBase, domain.FileTypePV, domain.FileTypeRender,
		domain.FileTypeSB, domain.FileTypeAnim, domain.FileTypeTmp,
	} {
		tok, _ := t.Token()
		toks = append(toks, tok)
	}
	return strings.Join(toks, "|")
}()

var (
	tokenRE    = regexp.MustCompile(`^(.+?)_(` + tokenAlt + `)_(.+)$`)
	sceneRevRE = regexp.MustCompile(`^SC([^_]*)_Rev_(.*)$`)
	revOnlyRE  = regexp.MustCompile(`^Rev_(.*)$`)
)

// Encode 把记录序列化为规范文件名（不含扩展名）。
//
// 失败条件：项目名为空、未知类型、修订段非法、SC 与类型要求矛盾、SC 违反步长。
func (c Codec) Encode(rec domain.FilenameRecord) (string, error) {
	if strings.TrimSpace(rec.ProjectName) == "" {
		return "", &Error{Code: ErrCodeEmptyProject}
	}
	tok, ok := rec.Type.Token()
	if !ok {
		return "", &Error{Code: ErrCodeUnrecognizedToken, Name: string(rec.Type)}
	}
	if !isRevision(rec.Revision) {
		return "", &Error{Code: ErrCodeMalformedRevision, Name: rec.Revision}
	}

	if !rec.Type.NeedsScene() {
		if rec.Scene != 0 {
			return "", &Error{Code: ErrCodeMalformedScene, Name: tok}
		}
		return fmt.Sprintf("%s_%s_Rev_%s", rec.ProjectName, tok, rec.Revision), nil
	}

	if rec.Scene < 1 || rec.Scene > 999 {
		return "", &Error{Code: ErrCodeMalformedScene, Name: tok}
	}
	if err := c.checkStep(rec.Scene, tok); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_SC%03d_Rev_%s", rec.ProjectName, tok, rec.Scene, rec.Revision), nil
}

// Decode 反向解析规范文件名；接受尾随 ".blend"（大小写不敏感）。
//
// 语法检查顺序固定：token → SC 段 → 修订段 → 步长策略。
func (c Codec) Decode(name string) (domain.FilenameRecord, error) {
	n := strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(n), ".blend") {
		n = n[:len(n)-len(".blend")]
	}

	m := tokenRE.FindStringSubmatch(n)
	if m == nil {
		return domain.FilenameRecord{}, &Error{Code: ErrCodeUnrecognizedToken, Name: name}
	}
	project := m[1]
	ftype, _ := domain.FileTypeByToken(m[2])
	tail := m[3]

	rec := domain.FilenameRecord{ProjectName: project, Type: ftype}

	if sm := sceneRevRE.FindStringSubmatch(tail); sm != nil {
		if !ftype.NeedsScene() {
			return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedScene, Name: name}
		}
		sc, err := parseScene(sm[1])
		if err != nil {
			return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedScene, Name: name, Err: err}
		}
		if !isRevision(sm[2]) {
			return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedRevision, Name: name}
		}
		if err := c.checkStep(sc, name); err != nil {
			return domain.FilenameRecord{}, err
		}
		rec.Scene = sc
		rec.Revision = sm[2]
		return rec, nil
	}

	if rm := revOnlyRE.FindStringSubmatch(tail); rm != nil {
		if ftype.NeedsScene() {
			return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedScene, Name: name}
		}
		if !isRevision(rm[1]) {
			return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedRevision, Name: name}
		}
		rec.Revision = rm[1]
		return rec, nil
	}

	return domain.FilenameRecord{}, &Error{Code: ErrCodeMalformedRevision, Name: name}
}

func (c Codec) checkStep(scene int, name string) error {
	if c.Policy.FreeSceneNumbering || c.Policy.SceneStep <= 0 {
		return nil
	}
	if scene%c.Policy.SceneStep != 0 {
		return &Error{Code: ErrCodeSceneStep, Name: name}
	}
	return nil
}

// parseScene 要求恰好 3 位数字且在 1–999 内。
func parseScene(s string) (int, error) {
	if len(s) != 3 || !isDigits(s) {
		return 0, fmt.Errorf("SC 段必须是 3 位数字，实际 %q", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("SC 段必须是 3 位数字，实际 %q", s)
	}
	if n < 1 || n > 999 {
		return 0, fmt.Errorf("SC 号必须在 1–999 内，实际 %d", n)
	}
	return n, nil
}

func isRevision(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

