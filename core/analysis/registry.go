package analysis

import (
	"fmt"

	"github.com/Rehodra/AI-Youtube-Analyser/config"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// Registry maps module kinds to their capability adapters
type Registry struct {
	adapters map[models.ModuleKind]Adapter
}

// NewRegistry builds adapters for every requestable module against the given
// inference client, applying per-module settings from cfg
func NewRegistry(client InferenceClient, cfg *config.ModulesConfig) *Registry {
	r := &Registry{adapters: make(map[models.ModuleKind]Adapter)}

	r.register(NewTitleEngineAdapter(client, cfg.Settings(models.ModuleTitleEngine)))
	r.register(NewCTRAnalysisAdapter(client, cfg.Settings(models.ModuleCTRAnalysis)))
	r.register(NewMultiPlatformAdapter(client, cfg.Settings(models.ModuleMultiPlatform)))
	r.register(NewCopyrightScanAdapter(client, cfg.Settings(models.ModuleCopyrightScan)))
	r.register(NewFairUseAdapter(client, cfg.Settings(models.ModuleFairUse)))
	r.register(NewTrendIntelligenceAdapter(client, cfg.Settings(models.ModuleTrendIntelligence)))

	return r
}

// NewRegistryFromAdapters builds a registry from explicit adapters
func NewRegistryFromAdapters(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[models.ModuleKind]Adapter)}
	for _, a := range adapters {
		r.register(a)
	}
	return r
}

func (r *Registry) register(a Adapter) {
	r.adapters[a.Kind()] = a
}

// Lookup returns the adapter for a module kind
func (r *Registry) Lookup(kind models.ModuleKind) (Adapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for module %q", kind)
	}
	return a, nil
}
