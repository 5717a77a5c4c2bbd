package common

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// 多个空格/制表符合并为一个空格
	spaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	// 多个换行符（3个或以上）合并为两个换行
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// 零宽字符集合
var zeroWidthRunes = map[rune]bool{
	'\u200B': true, // Zero Width Space
	'\u200C': true, // Zero Width Non-Joiner
	'\u200D': true, // Zero Width Joiner
	'\uFEFF': true, // Zero Width No-Break Space (BOM)
	'\u2060': true, // Word Joiner
	'\u180E': true, // Mongolian Vowel Separator
}

// 非标准空格字符（转换为普通空格）
var nonStandardSpaces = map[rune]bool{
	'\u00A0': true, // Non-breaking space
	'\u1680': true, // Ogham Space Mark
	'\u2000': true, // En Quad
	'\u2001': true, // Em Quad
	'\u2002': true, // En Space
	'\u2003': true, // Em Space
	'\u2004': true, // Three-Per-Em Space
	'\u2005': true, // Four-Per-Em Space
	'\u2006': true, // Six-Per-Em Space
	'\u2007': true, // Figure Space
	'\u2008': true, // Punctuation Space
	'\u2009': true, // Thin Space
	'\u200A': true, // Hair Space
	'\u202F': true, // Narrow No-Break Space
	'\u205F': true, // Medium Mathematical Space
	'\u3000': true, // Ideographic Space (全角空格)
}

// NormalizeForEmbedding 生成送入向量模型的文本
//
// 去除控制字符和零宽字符，做 NFC 归一化并合并空白。只影响向量化输入，
// 存储的文档内容保持原样。清洗后为空时返回原文本。
func NormalizeForEmbedding(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7F || zeroWidthRunes[r]:
		case nonStandardSpaces[r]:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	out := norm.NFC.String(b.String())
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = spaceRe.ReplaceAllString(out, " ")
	out = newlineRe.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)
	if out == "" {
		return s
	}
	return out
}
