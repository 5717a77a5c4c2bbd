package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/kbrag/core/model"
	"github.com/Malowking/kbrag/core/vector_store"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gcfg"
)

// Config 服务运行所需的全部配置
type Config struct {
	VectorStore vector_store.Config
	Models      model.Config
}

// Load 从 g.Cfg() 读取配置
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, g.Cfg())
}

// LoadFrom 从指定配置源读取各配置段
func LoadFrom(ctx context.Context, source *gcfg.Config) (*Config, error) {
	cfg := &Config{}
	sections := []struct {
		key    string
		target any
	}{
		{"vectorStore", &cfg.VectorStore},
		{"milvus", &cfg.VectorStore.Milvus},
		{"postgres", &cfg.VectorStore.Postgres},
		{"chromem", &cfg.VectorStore.Chromem},
		{"embedding", &cfg.Models.Embedding},
		{"chat", &cfg.Models.Chat},
		{"rerank", &cfg.Models.Rerank},
	}
	for _, s := range sections {
		v := source.MustGet(ctx, s.key)
		if v.IsNil() {
			continue
		}
		if err := v.Scan(s.target); err != nil {
			return nil, fmt.Errorf("failed to parse config section %s: %w", s.key, err)
		}
	}

	// 集合维度缺省时沿用 embedding 维度
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = cfg.Models.Embedding.Dimension
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = vector_store.VectorStoreTypeMilvus
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "documents"
	}
	return cfg, nil
}

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	cfg, err := Load(ctx)
	if err != nil {
		return err
	}
	return cfg.Validate(ctx)
}

// Validate 检查必填项，可选项缺失时只输出警告
func (c *Config) Validate(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证向量库配置
	switch c.VectorStore.Type {
	case vector_store.VectorStoreTypeMilvus:
		if c.VectorStore.Milvus.Address == "" {
			missingConfigs = append(missingConfigs, "milvus.address")
		}
	case vector_store.VectorStoreTypePgvector:
		if c.VectorStore.Postgres.DSN == "" {
			missingConfigs = append(missingConfigs, "postgres.dsn")
		}
	case vector_store.VectorStoreTypeChromem:
		if c.VectorStore.Chromem.Path == "" {
			warnings = append(warnings, "chromem.path is not set, documents are kept in memory only")
		}
	default:
		missingConfigs = append(missingConfigs, fmt.Sprintf("vectorStore.type (unsupported value %q)", c.VectorStore.Type))
	}

	// 验证 Embedding 配置
	emb := c.Models.Embedding
	if emb.BaseURL == "" {
		missingConfigs = append(missingConfigs, "embedding.baseURL")
	}
	if emb.Model == "" {
		missingConfigs = append(missingConfigs, "embedding.model")
	}
	if emb.Dimension <= 0 {
		missingConfigs = append(missingConfigs, "embedding.dimension")
	}
	if emb.APIKey == "" {
		warnings = append(warnings, "embedding.apiKey is not set")
	}
	if emb.Dimension > 0 && c.VectorStore.Dimension != emb.Dimension {
		missingConfigs = append(missingConfigs, fmt.Sprintf("vectorStore.dimension (%d) must equal embedding.dimension (%d)", c.VectorStore.Dimension, emb.Dimension))
	}

	// 验证 Chat 配置
	chat := c.Models.Chat
	if chat.Model == "" {
		missingConfigs = append(missingConfigs, "chat.model")
	}
	if chat.APIKey == "" {
		warnings = append(warnings, "chat.apiKey is not set")
	}
	if chat.BaseURL == "" {
		warnings = append(warnings, "chat.baseURL is not set")
	}

	// 验证 Rerank 配置
	if strings.EqualFold(c.Models.Rerank.Provider, "http") && c.Models.Rerank.BaseURL == "" {
		missingConfigs = append(missingConfigs, "rerank.baseURL")
	}

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	g.Log().Info(ctx, "✓ All required configuration items are present")
	return nil
}
