// Package privacy 检测消息中的个人敏感信息（电话、邮箱、身份证号、银行账号）
// 纯函数，无副作用，可并发调用
package privacy

import (
	"regexp"
	"strings"
)

// Verdict 过滤结果
type Verdict struct {
	Blocked bool   // 是否命中
	Reason  string // 可读原因，多个类别以 ", " 连接
}

type detector struct {
	label   string
	pattern *regexp.Regexp
}

var (
	phonePattern = regexp.MustCompile(`\b(?:01[016789]|0(?:2|[3-6][1-5]))[-.\s]?\d{3,4}[-.\s]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// 주민등록번호: YYMMDD-Gxxxxxx
	nationalIDPattern = regexp.MustCompile(`\b\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])[-\s]?[1-8]\d{6}\b`)
	// 账号候选：至少一个 - 或空格分隔的数字串，不限各段长度，总位数在 10~16 位才算命中
	accountPattern = regexp.MustCompile(`\b\d+(?:[-\s]\d+)+\b`)
)

const (
	LabelPhone      = "전화번호"
	LabelEmail      = "이메일"
	LabelNationalID = "주민등록번호"
	LabelAccount    = "계좌번호"

	minAccountDigits = 10
	maxAccountDigits = 16
)

// masking 阶段的检测器，命中后在文本中抹掉，避免同一串数字再被识别为账号
var maskingDetectors = []detector{
	{label: LabelPhone, pattern: phonePattern},
	{label: LabelEmail, pattern: emailPattern},
	{label: LabelNationalID, pattern: nationalIDPattern},
}

// Evaluate 检查消息内容，空白内容永远不拦截
func Evaluate(content string) Verdict {
	if strings.TrimSpace(content) == "" {
		return Verdict{}
	}

	var labels []string
	rest := content
	for _, d := range maskingDetectors {
		if !d.pattern.MatchString(rest) {
			continue
		}
		labels = append(labels, d.label)
		rest = d.pattern.ReplaceAllStringFunc(rest, mask)
	}
	if containsAccount(rest) {
		labels = append(labels, LabelAccount)
	}

	if len(labels) == 0 {
		return Verdict{}
	}
	return Verdict{Blocked: true, Reason: strings.Join(labels, ", ")}
}

func containsAccount(s string) bool {
	for _, candidate := range accountPattern.FindAllString(s, -1) {
		n := countDigits(candidate)
		if n >= minAccountDigits && n <= maxAccountDigits {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func mask(s string) string {
	return strings.Repeat("#", len(s))
}
