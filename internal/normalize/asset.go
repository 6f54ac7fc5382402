package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// 对象/集合名的严格形态：PascalCase 段，'_' 分隔，数字段独立成段。
var assetValidRE = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*(?:_(?:[A-Z][A-Za-z0-9]*|[0-9]+))*$`)

var nonAlnumRE = regexp.MustCompile(`[^A-Za-z0-9]+`)

var numSuffixRE = regexp.MustCompile(`^(.+?)(?:_(\d+))?$`)

// variantTokens 是尺寸/方位类修饰词；出现在尾部时各自独立成段（Chair_Small 而非 ChairSmall）。
var variantTokens = map[string]struct{}{
	"small": {}, "medium": {}, "large": {},
	"xs": {}, "s": {}, "m": {}, "l": {}, "xl": {}, "xxl": {}, "xxxl": {},
	"short": {}, "long": {}, "tall": {}, "wide": {}, "high": {}, "low": {},
	"left": {}, "right": {}, "front": {}, "back": {}, "top": {}, "bottom": {},
	"upper": {}, "lower": {}, "inner": {}, "outer": {}, "near": {}, "far": {},
}

const assetMaxLen = 63

// NormalizeAssetName 把任意字符串收敛为严格对象名形态。
//
// 规则：
// - 去变音符；非字母数字作为段边界
// - 每段 PascalCase；数字串独立为 `_NN` 段
// - 首段必须以字母开头，否则前插 fallback
func NormalizeAssetName(raw, fallback string) string {
	if fallback == "" {
		fallback = "Asset"
	}
	s := strings.TrimSpace(StripDiacritics(raw))
	if s == "" {
		return truncateSegments(fallback)
	}

	var segments []string
	for _, block := range nonAlnumRE.Split(s, -1) {
		if block == "" {
			continue
		}
		tokens := splitCamel(block)
		var alpha []string
		for _, tok := range tokens {
			if isDigits(tok) {
				segments = append(segments, alphaSegments(alpha)...)
				alpha = nil
				segments = append(segments, tok)
				continue
			}
			alpha = append(alpha, tok)
		}
		segments = append(segments, alphaSegments(alpha)...)
	}

	if len(segments) == 0 {
		return truncateSegments(fallback)
	}
	if segments[0] == "" || !unicode.IsLetter(rune(segments[0][0])) {
		segments = append([]string{pascalize([]string{fallback})}, segments...)
	}

	name := strings.Join(segments, "_")
	if len(name) > assetMaxLen {
		name = strings.TrimRight(name[:assetMaxLen], "_")
	}
	if name == "" {
		name = truncateSegments(fallback)
	}
	return name
}

// IsValidAssetName 判断名字是否已经符合严格形态。
func IsValidAssetName(name string) bool {
	return name != "" && assetValidRE.MatchString(name)
}

// EnsureUniqueAssetName 在 existing 集合内分配唯一名：
// 尾部已有数字段则从它继续递增（保留位宽），否则从 _02 开始补后缀。
func EnsureUniqueAssetName(name string, existing map[string]struct{}) string {
	base := NormalizeAssetName(name, "Asset")
	if _, used := existing[base]; !used {
		return base
	}

	head := base
	width := 2
	counter := 1
	if m := numSuffixRE.FindStringSubmatch(base); m != nil && m[2] != "" {
		head = m[1]
		width = len(m[2])
		fmt.Sscanf(m[2], "%d", &counter)
	}

	for {
		counter++
		suffix := fmt.Sprintf("%0*d", width, counter)
		maxHead := assetMaxLen - len(suffix) - 1
		if maxHead < 1 {
			maxHead = 1
		}
		h := head
		if len(h) > maxHead {
			h = strings.TrimRight(h[:maxHead], "_")
		}
		cand := h + "_" + suffix
		if _, used := existing[cand]; !used {
			return cand
		}
	}
}

// AssetGroupKey 从规范名导出稳定的分组 token（首段的首个 camel 词）。
func AssetGroupKey(name string) string {
	normalized := NormalizeAssetName(name, "Asset")
	head := normalized
	if i := strings.IndexByte(normalized, '_'); i >= 0 {
		head = normalized[:i]
	}
	tokens := splitCamel(head)
	if len(tokens) == 0 || isDigits(tokens[0]) {
		return head
	}
	return tokens[0]
}

// splitCamel 把一个字母数字块切成 camel 词与数字串。
// "HTTPServer42" → ["HTTP","Server","42"]；"miChair" → ["mi","Chair"]。
func splitCamel(block string) []string {
	rs := []rune(block)
	var out []string
	start := 0
	for i := 1; i <= len(rs); i++ {
		if i == len(rs) {
			out = append(out, string(rs[start:i]))
			break
		}
		prev, cur := rs[i-1], rs[i]
		boundary := false
		switch {
		case unicode.IsDigit(prev) != unicode.IsDigit(cur):
			boundary = true
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			// 大写串后接首字母词（HTTPServer 的 P|S 边界）。
			boundary = true
		}
		if boundary {
			out = append(out, string(rs[start:i]))
			start = i
		}
	}
	return out
}

func alphaSegments(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	split := len(tokens)
	for split > 0 {
		if _, ok := variantTokens[strings.ToLower(tokens[split-1])]; !ok {
			break
		}
		split--
	}
	var segments []string
	if split > 0 {
		segments = append(segments, pascalize(tokens[:split]))
	}
	for _, tok := range tokens[split:] {
		segments = append(segments, pascalize([]string{tok}))
	}
	return segments
}

// pascalize 拼接词并首字母大写；≤3 字符的全大写缩写保持原样（PV、SC、HDR）。
func pascalize(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if len(tok) <= 3 && tok == strings.ToUpper(tok) && !isDigits(tok) {
			b.WriteString(tok)
			continue
		}
		b.WriteString(capitalizeToken(tok))
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func truncateSegments(s string) string {
	if len(s) > assetMaxLen {
		return strings.TrimRight(s[:assetMaxLen], "_")
	}
	return s
}
