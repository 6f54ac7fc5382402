package domain

import (
	"regexp"
	"strings"
)

// ProjectCode 是项目根目录的唯一主键（形如 AB-00001）。
//
// 约束：必须是 2 个大写字母 + '-' + 5 位数字；要么解析成功，要么失败，
// 不允许部分匹配或自动修复。
type ProjectCode string

var projectCodeRE = regexp.MustCompile(`^[A-Z]{2}-\d{5}$`)

// projectDirRE 从 "AB-00001 Project Name" 形态的目录名中提取自由文本部分。
var projectDirRE = regexp.MustCompile(`^([A-Z]{2}-\d{5})\s+(.+)$`)

// ParseProjectCode 校验并解析规范化后的项目代码。
// 输入必须已经是大写 + '-' 分隔的形态。
func ParseProjectCode(s string) (ProjectCode, bool) {
	s = strings.TrimSpace(s)
	if !projectCodeRE.MatchString(s) {
		return "", false
	}
	return ProjectCode(s), true
}

// SplitProjectDir 拆分项目根目录名为 (代码, 自由文本)。
// 目录名不符合 "XX-##### Name" 形态时 ok=false。
func SplitProjectDir(dirName string) (code ProjectCode, freeText string, ok bool) {
	m := projectDirRE.FindStringSubmatch(strings.TrimSpace(dirName))
	if m == nil {
		return "", "", false
	}
	c, valid := ParseProjectCode(m[1])
	if !valid {
		return "", "", false
	}
	return c, m[2], true
}

// IsProjectDir 判断目录名是否是项目根（用于自底向上找根）。
func IsProjectDir(dirName string) bool {
	_, _, ok := SplitProjectDir(dirName)
	return ok
}
