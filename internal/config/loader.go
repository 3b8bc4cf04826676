// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// 凭据环境变量，按优先级排列；NEXT_PUBLIC_ 前缀兼容旧版 .env.local
var geminiKeyEnvs = []string{"GEMINI_API_KEY", "NEXT_PUBLIC_GEMINI_API_KEY"}

var placeholderRe = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 从 configs 目录加载配置
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom 加载指定目录下的配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), false); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyCredentialFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，后续文件走 Merge
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		submatch := placeholderRe.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		// 保留原样以便识别未定义的变量
		return match
	})
}

// applyCredentialFallbacks 为 gemini 类型提供商补全 API Key
func applyCredentialFallbacks(cfg *Config) {
	for name, p := range cfg.LLM.Providers {
		// 未展开的占位符视为缺失，先清掉再判断
		if isPlaceholder(strings.TrimSpace(p.APIKey)) {
			p.APIKey = ""
			cfg.LLM.Providers[name] = p
		}
		if p.ResolvedType(name) != ProviderTypeGemini || p.Configured() {
			continue
		}
		for _, env := range geminiKeyEnvs {
			if val := strings.TrimSpace(os.Getenv(env)); val != "" {
				p.APIKey = val
				break
			}
		}
		cfg.LLM.Providers[name] = p
	}
}

// Validate 校验结构性配置；凭据缺失不在此报错，由页面降级处理
func (c *Config) Validate() error {
	name := strings.TrimSpace(c.LLM.DefaultProvider)
	if name == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	p, ok := c.LLM.Providers[name]
	if !ok {
		return fmt.Errorf("llm provider not found: %s", name)
	}
	if strings.TrimSpace(p.Model) == "" {
		return fmt.Errorf("llm.providers.%s.model is required", name)
	}
	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("invalid server.http.port: %d", c.Server.HTTP.Port)
	}
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "story-time-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "90s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.shutdown_timeout", "30s")

	v.SetDefault("llm.default_provider", "gemini")

	v.SetDefault("form.visitor_ttl", "30m")
	v.SetDefault("form.cookie_secure", false)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
}
