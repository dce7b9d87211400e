package factory

import (
	"fmt"
	"time"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers/openai"
)

// NewProvider builds a translation backend from the run configuration.
func NewProvider(cfg *config.Config) (providers.TranslationProvider, error) {
	base := providers.DefaultConfig()
	base.APIKey = cfg.APIKey
	base.APIEndpoint = cfg.APIEndpoint
	if cfg.RequestTimeout > 0 {
		base.Timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	switch cfg.Provider {
	case "ollama", "":
		providerCfg := ollama.DefaultConfig()
		providerCfg.BaseConfig = base
		if cfg.Model != "" {
			providerCfg.Model = cfg.Model
		}
		providerCfg.Temperature = float32(cfg.Temperature)
		return ollama.New(providerCfg), nil

	case "openai":
		providerCfg := openai.DefaultConfig()
		providerCfg.BaseConfig = base
		if cfg.Model != "" {
			providerCfg.Model = cfg.Model
		}
		providerCfg.Temperature = float32(cfg.Temperature)
		return openai.New(providerCfg), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}
