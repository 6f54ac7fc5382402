// Package normalize 把自由文本收敛为管线约定的规范 token。
//
// 约束：所有函数都是纯函数；同一输入永远得到同一输出（幂等：
// Normalize(Normalize(x)) == Normalize(x)）。
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

// ErrEmptyName 表示清洗后什么都不剩（调用方必须显式处理，不允许用空串继续）。
var ErrEmptyName = errors.New("名字清洗后为空")

// reservedRE 覆盖最严格平台（Windows）的保留字符，外加管线不允许进名字的标点。
var reservedRE = regexp.MustCompile("[<>:\"/\\\\|?*()'\",.;:!¿?_@#^`~+-]")

var spaceRE = regexp.MustCompile(`\s+`)

// stripTransform 是 NFD 分解 + 去组合符 + NFC 重组的固定链。
var stripTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics 去掉变音符（é→e、ñ→n）。转换失败时原样返回（输入即输出，绝不半截）。
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripTransform, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize 把自由文本项目名收敛为 CamelCase 规范名。
//
// 步骤（顺序固定）：
// 1) 若输入是 "XX-##### Name" 形态的项目目录名，先取出自由文本部分
// 2) 去变音符
// 3) 保留字符和控制字符替换为空格
// 4) 连续空白折叠为单个空格并裁剪
// 5) 逐词首字母大写（词内已有大写的保持原样），无分隔符拼接
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if _, free, ok := domain.SplitProjectDir(s); ok {
		s = free
	}

	s = StripDiacritics(s)
	s = reservedRE.ReplaceAllString(s, " ")
	s = stripControl(s)
	s = strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
	if s == "" {
		return "", ErrEmptyName
	}

	var b strings.Builder
	for _, tok := range strings.Split(s, " ") {
		if tok == "" {
			continue
		}
		b.WriteString(capitalizeToken(tok))
	}
	if b.Len() == 0 {
		return "", ErrEmptyName
	}
	return b.String(), nil
}

// capitalizeToken 保持词内已有的 CamelCase，不做破坏性小写化。
func capitalizeToken(tok string) string {
	rs := []rune(tok)
	hasInnerUpper := false
	for _, r := range rs[1:] {
		if unicode.IsUpper(r) {
			hasInnerUpper = true
			break
		}
	}
	if !hasInnerUpper {
		for i := 1; i < len(rs); i++ {
			rs[i] = unicode.ToLower(rs[i])
		}
	}
	if unicode.IsLetter(rs[0]) {
		rs[0] = unicode.ToUpper(rs[0])
	}
	return string(rs)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// SanitizeHint 清洗外部来源的自由文本提示（trim + 去控制字符），不做其他改写。
func SanitizeHint(s string) string {
	return strings.TrimSpace(stripControl(s))
}
