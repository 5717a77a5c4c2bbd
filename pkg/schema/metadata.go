package schema

import (
	"fmt"

	"github.com/bytedance/sonic"
)

const (
	// MaxMetadataKeyLen 元数据键的最大长度
	MaxMetadataKeyLen = 256
	// MaxMetadataBytes 序列化后元数据的最大字节数
	MaxMetadataBytes = 8192
)

// Metadata 文档元数据，值只允许标量，或一层由标量组成的列表/对象
type Metadata map[string]any

var metadataAPI = sonic.Config{
	SortMapKeys:      true,
	EscapeHTML:       false,
	CompactMarshaler: true,
	UseNumber:        false,
}.Froze()

// Validate 校验元数据结构
func (m Metadata) Validate() error {
	for k, v := range m {
		if k == "" {
			return fmt.Errorf("metadata key must not be empty")
		}
		if len(k) > MaxMetadataKeyLen {
			return fmt.Errorf("metadata key %q exceeds %d characters", k[:32], MaxMetadataKeyLen)
		}
		if err := validateValue(k, v, true); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(key string, v any, allowNested bool) error {
	switch val := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case []any:
		if !allowNested {
			return fmt.Errorf("metadata key %q: nesting deeper than one level is not allowed", key)
		}
		for _, item := range val {
			if err := validateValue(key, item, false); err != nil {
				return err
			}
		}
		return nil
	case []string:
		if !allowNested {
			return fmt.Errorf("metadata key %q: nesting deeper than one level is not allowed", key)
		}
		return nil
	case map[string]any:
		if !allowNested {
			return fmt.Errorf("metadata key %q: nesting deeper than one level is not allowed", key)
		}
		for sub, item := range val {
			if sub == "" {
				return fmt.Errorf("metadata key %q: nested key must not be empty", key)
			}
			if err := validateValue(key, item, false); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("metadata key %q: unsupported value type %T", key, v)
	}
}

// EncodeMetadata 校验并序列化元数据，空元数据编码为 "{}"
func EncodeMetadata(m Metadata) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	s, err := metadataAPI.MarshalToString(map[string]any(m))
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if len(s) > MaxMetadataBytes {
		return "", fmt.Errorf("encoded metadata is %d bytes, limit is %d", len(s), MaxMetadataBytes)
	}
	return s, nil
}

// DecodeMetadata 反序列化并校验元数据，空串返回空元数据
func DecodeMetadata(s string) (Metadata, error) {
	m := Metadata{}
	if s == "" {
		return m, nil
	}
	raw := map[string]any{}
	if err := metadataAPI.UnmarshalFromString(s, &raw); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	m = Metadata(raw)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
