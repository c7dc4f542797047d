package app

import (
	"context"
	"fmt"
	"io"

	"github.com/yungbote/greenscape-backend/internal/pkg/dbctx"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
	"github.com/yungbote/greenscape-backend/internal/services"
)

// LoadCatalog imports a YAML catalog into the configured database and invalidates the
// shared catalog cache. With dryRun set it only validates.
func LoadCatalog(ctx context.Context, cfg *Config, r io.Reader, dryRun bool) (*services.ImportSummary, error) {
	log, err := logger.New(cfg.Server.LogMode, logger.WithHashSalt(cfg.Server.LogHashSalt))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	dbService, err := openDatabase(log, cfg.Database)
	if err != nil {
		return nil, err
	}
	defer dbService.Close()

	clients, err := wireClients(log, *cfg)
	if err != nil {
		return nil, err
	}
	defer clients.Close()

	repos := wireRepos(dbService.DB(), log)
	catalog := services.NewCatalogService(dbService.DB(), log, repos.Plant, clients.CatalogCache, nil)

	plants, err := catalog.LoadYAML(r)
	if err != nil {
		return nil, err
	}
	if dryRun {
		summary := &services.ImportSummary{Received: len(plants), Rejected: []services.ImportRejection{}}
		for i, p := range plants {
			if err := p.Validate(); err != nil {
				summary.Rejected = append(summary.Rejected, services.ImportRejection{Index: i, Name: p.Name, Reason: err.Error()})
			}
		}
		return summary, nil
	}
	return catalog.Import(dbctx.Context{Ctx: ctx}, plants)
}
