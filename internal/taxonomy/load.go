package taxonomy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

const (
	// ErrCodeNotFound 表示词汇表文件不存在。
	ErrCodeNotFound = "taxonomy_not_found"
	// ErrCodeInvalid 表示文件无法解析，或词条不合法（类型在固定词汇表外等）。
	ErrCodeInvalid = "taxonomy_invalid"
)

// Error 是加载阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到词汇表文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：词汇表 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：词汇表 %q 无效", e.Code, e.Path)
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

// document 对应词汇表 YAML 的解析结构。
type document struct {
	Types []struct {
		Type     string   `yaml:"type"`
		Aliases  []string `yaml:"aliases_for_type"`
		Finishes []string `yaml:"known_finishes"`
	} `yaml:"types"`
	Similarity struct {
		MinType   *float64 `yaml:"min_type"`
		MinFinish *float64 `yaml:"min_finish"`
	} `yaml:"similarity"`
}

// Load 读取并校验词汇表文件（进程内只应调用一次，结果显式传下去）。
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	idx, err := Parse(data)
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			te.Path = path
			return nil, te
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return idx, nil
}

// Parse 解析词汇表文档并做形态校验。
//
// 硬约束：每个词条的 type 必须在固定材质类型词汇表内——词汇表文件
// 只能为已有类型补充别名/finish，不能私自扩充类型集合。
func Parse(data []byte) (*Index, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Err: err}
	}
	if len(doc.Types) == 0 {
		return nil, &Error{Code: ErrCodeInvalid, Err: errors.New("types 列表为空")}
	}

	entries := make([]Entry, 0, len(doc.Types))
	seen := map[domain.MaterialType]struct{}{}
	for _, t := range doc.Types {
		mt := domain.MaterialType(t.Type)
		if !domain.IsAllowedMaterialType(mt) {
			return nil, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("类型 %q 不在固定词汇表内", t.Type)}
		}
		if _, dup := seen[mt]; dup {
			return nil, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("类型 %q 重复", t.Type)}
		}
		seen[mt] = struct{}{}
		entries = append(entries, Entry{Type: mt, Aliases: t.Aliases, Finishes: t.Finishes})
	}

	th := DefaultThresholds
	if doc.Similarity.MinType != nil {
		th.MinType = *doc.Similarity.MinType
	}
	if doc.Similarity.MinFinish != nil {
		th.MinFinish = *doc.Similarity.MinFinish
	}
	if th.MinType <= 0 || th.MinType > 1 || th.MinFinish <= 0 || th.MinFinish > 1 {
		return nil, &Error{Code: ErrCodeInvalid, Err: errors.New("similarity 阈值必须在 (0,1] 内")}
	}

	return New(entries, th), nil
}

// Default 返回内置兜底索引（词汇表文件缺失时 CLI/测试用）。
func Default() *Index {
	return New([]Entry{
		{Type: "Plastic", Aliases: []string{"ABS", "PC", "PP", "PVC", "Acrylic", "Nylon"}, Finishes: []string{"Generic", "Glossy", "Matte", "Textured"}},
		{Type: "Metal", Aliases: []string{"Steel", "Alu", "Aluminium", "Copper", "Brass"}, Finishes: []string{"Brushed", "Polished", "Rusty", "Anodized", "Galvanized"}},
		{Type: "Glass", Aliases: []string{"Crystal"}, Finishes: []string{"Clear", "Tint", "Frosted", "Dispersion"}},
		{Type: "Rubber", Finishes: []string{"Generic", "Textured"}},
		{Type: "Wood", Aliases: []string{"Timber"}, Finishes: []string{"Oak", "Walnut", "Pine", "Polished", "Old"}},
		{Type: "Fabric", Aliases: []string{"Textile", "Cloth"}, Finishes: []string{"Velvet", "Jean", "Knitting", "Sequin"}},
		{Type: "Ceramic", Aliases: []string{"Tile", "Tiles", "Porcelain"}, Finishes: []string{"TilesHex", "TilesOffset", "TilesGrid", "Herringbone", "Glossy"}},
		{Type: "Stone", Aliases: []string{"Marble", "Granite", "Slate"}, Finishes: []string{"Polished", "Rough", "Old"}},
		{Type: "Concrete", Aliases: []string{"Asphalt", "Cement"}, Finishes: []string{"Rough", "Polished", "Old"}},
		{Type: "Paper", Aliases: []string{"Cardboard"}, Finishes: []string{"Generic", "Old"}},
		{Type: "Leather", Aliases: []string{"PU"}, Finishes: []string{"Generic", "Old"}},
		{Type: "Liquid", Aliases: []string{"Water", "Ocean"}, Finishes: []string{"Clear", "Murky"}},
		{Type: "Emissive", Aliases: []string{"Light", "Neon"}, Finishes: []string{"Generic"}},
		{Type: "Paint", Finishes: []string{"Glossy", "Matte", "Metallic"}},
	}, DefaultThresholds)
}
