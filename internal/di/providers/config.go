// Package providers contains dependency injection providers for the AlbumAtlas server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting AlbumAtlas",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
	)

	return log, nil
}

// ProvideRules provides the normalization rule tables, either the
// configured JSON file or the built-in defaults.
func ProvideRules(i do.Injector) (*vocab.Rules, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	rules, err := config.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Rules.Path != "" {
		log.Info("Normalization rules loaded", "path", cfg.Rules.Path)
	}
	return rules, nil
}
