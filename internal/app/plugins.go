package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/types"
	"github.com/sves-daq/backend/internal/domain/vehicle"
	"github.com/sves-daq/backend/pkg/logger"
	"github.com/sves-daq/backend/pkg/metrics"
)

// ListPlugins returns the registered plugin documents. Failures yield an
// empty list.
func (s *Service) ListPlugins(ctx context.Context) []model.Document {
	docs, err := s.store.List(ctx, model.CollectionPlugins, repository.Query{})
	if err != nil {
		s.logger.Error(ctx, "list plugins failed", logger.Error(err))
		return []model.Document{}
	}
	return nonNil(docs)
}

// RunPlugin executes a plugin after the configured processing delay. It
// returns ctx.Err() when the caller gives up first.
func (s *Service) RunPlugin(ctx context.Context, name string) (types.PluginRun, error) {
	started := s.timestamp()
	out := vehicle.RunPlugin(name)

	if s.pluginDelay > 0 {
		t := time.NewTimer(s.pluginDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return types.PluginRun{}, fmt.Errorf("run plugin %s: %w", name, ctx.Err())
		case <-t.C:
		}
	}

	metrics.RecordPluginRun(name)
	if !vehicle.KnownPlugin(name) {
		s.logger.Debug(ctx, "generic plugin run", logger.String("plugin", name))
	}
	return types.PluginRun{
		Success:    true,
		PluginName: name,
		Timestamp:  started,
		Message:    out.Message,
		Data:       out.Data,
	}, nil
}

// ConfigurePlugin stores config on the plugin's document, creating one keyed
// by name when the plugin is not registered.
func (s *Service) ConfigurePlugin(ctx context.Context, name string, config any) (types.PluginConfig, error) {
	update := model.Document{"config": config, "updatedAt": s.timestamp()}

	existing, err := s.store.List(ctx, model.CollectionPlugins, repository.Query{Limit: 1}.Where("name", name))
	if err != nil {
		return types.PluginConfig{}, fmt.Errorf("configure plugin %s: %w", name, err)
	}
	id := name
	if len(existing) > 0 {
		id = existing[0].ID()
	} else {
		update["name"] = name
	}
	if err := s.store.Set(ctx, model.CollectionPlugins, id, update, true); err != nil {
		return types.PluginConfig{}, fmt.Errorf("configure plugin %s: %w", name, err)
	}

	return types.PluginConfig{
		Success:    true,
		PluginName: name,
		Message:    fmt.Sprintf("Plugin %s configuration updated", name),
		Config:     config,
	}, nil
}
