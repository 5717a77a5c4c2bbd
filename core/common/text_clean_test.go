package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForEmbedding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "普通文本", input: "vector search", want: "vector search"},
		{name: "合并空白", input: "  vector \t\t search  ", want: "vector search"},
		{name: "零宽字符", input: "vec\u200Btor", want: "vector"},
		{name: "全角空格", input: "向量\u3000检索", want: "向量 检索"},
		{name: "控制字符", input: "a\x00b\x07c", want: "abc"},
		{name: "多余换行", input: "p1\r\n\r\n\r\n\r\np2", want: "p1\n\np2"},
		{name: "NFC", input: "e\u0301", want: "\u00e9"},
		{name: "清洗后为空", input: "\u200B", want: "\u200B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForEmbedding(tt.input))
		})
	}
}
