package main

import (
	"fmt"
	"os"

	"github.com/oxhq/typecore/internal/flow"
	"github.com/oxhq/typecore/internal/interproc"
	"github.com/oxhq/typecore/internal/loader"
	"github.com/oxhq/typecore/internal/obslog"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/resolver"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/types"
)

// moduleTable is the trivial in-memory resolver.ModuleLookup implementation
// the CLI needs to satisfy SourceCodeResolver's module-level fallback; the
// analyzer core itself never constructs one (spec §4.3 leaves module-level
// declaration storage to the caller).
type moduleTable map[string]types.TypeResolution

func (m moduleTable) ModuleLevel(name string) (types.TypeResolution, bool) {
	r, ok := m[name]
	return r, ok
}

// env is the fully-wired runtime every subcommand operates against: a
// frozen repository, a fully-registered resolver service, and the
// application-layer Service built over them (spec §2's data flow:
// "loaders populate the repository at startup -> resolution service
// answers point queries ... -> application services compose these").
type env struct {
	log  *obslog.Logger
	repo *repository.Repository
	svc  *service.Service
}

// buildEnv loads the archives named by --platform-archive/--config-archive
// (if given) into a fresh repository, freezes it, and wires the five
// resolvers + application service around it.
func buildEnv(platformArchive, configArchive string) (*env, error) {
	log := obslog.New()
	repo := repository.New()

	if platformArchive != "" {
		f, err := os.Open(platformArchive)
		if err != nil {
			return nil, fmt.Errorf("%w: opening platform archive: %v", loader.ErrConfiguration, err)
		}
		defer f.Close()
		src, err := loader.NewPlatformSource(f)
		if err != nil {
			return nil, err
		}
		res, err := loader.Load(src, repo, log.With("loader.platform"))
		if err != nil {
			return nil, err
		}
		log.Info("loaded platform archive", obslog.Fields{"loaded": res.Loaded, "skipped": res.Skipped})
	}

	if configArchive != "" {
		f, err := os.Open(configArchive)
		if err != nil {
			return nil, fmt.Errorf("%w: opening configuration archive: %v", loader.ErrConfiguration, err)
		}
		defer f.Close()
		src, err := loader.NewConfigurationSource(f)
		if err != nil {
			return nil, err
		}
		res, err := loader.Load(src, repo, log.With("loader.configuration"))
		if err != nil {
			return nil, err
		}
		log.Info("loaded configuration archive", obslog.Fields{"loaded": res.Loaded, "skipped": res.Skipped})
	}

	repo.Freeze()

	resolverSvc := resolver.NewService()
	flowStore := flow.NewStore()
	modules := moduleTable{}

	resolverSvc.Register(resolver.BuiltInResolver{})
	resolverSvc.Register(resolver.NewPlatformResolver(repo))
	resolverSvc.Register(resolver.NewConfigurationResolver(repo))
	resolverSvc.Register(resolver.NewExpressionResolver(resolverSvc, repo))
	resolverSvc.Register(resolver.NewSourceCodeResolver(flowStore, modules))

	graph := interproc.NewGraph()
	summaries := interproc.NewCache()
	resolverSvc.Register(interproc.NewCallResolver(graph, summaries, resolverSvc))

	svc := service.New(repo, resolverSvc, flowStore, graph, summaries, log)

	return &env{log: log, repo: repo, svc: svc}, nil
}
