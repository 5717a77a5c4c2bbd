package common

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDocumentIDLen 文档 ID 最大长度，与各向量库主键长度一致
const MaxDocumentIDLen = 256

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// SanitizeMilvusString 转义 Milvus 表达式中的特殊字符
// 防止通过特殊字符进行表达式注入
func SanitizeMilvusString(s string) string {
	// 转义反斜杠（必须先转义）
	s = strings.ReplaceAll(s, `\`, `\\`)
	// 转义双引号
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// ValidateDocumentID 验证文档 ID：非空、不超长、不含控制字符
func ValidateDocumentID(id string) bool {
	if id == "" || len(id) > MaxDocumentIDLen || !utf8.ValidString(id) {
		return false
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidateCollectionName 验证集合名称（只允许字母、数字、下划线）
// Milvus 集合名称规范: 1-255 字符，字母开头，只能包含字母、数字、下划线
func ValidateCollectionName(name string) bool {
	if len(name) == 0 || len(name) > 255 {
		return false
	}
	return collectionNamePattern.MatchString(name)
}
