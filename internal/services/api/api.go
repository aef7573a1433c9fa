// Package api provides the HTTP API for the application
package api

import (
	"time"

	"ablo/internal/core/cas"
	"ablo/internal/platform/config"
	"ablo/internal/platform/logger"
	phttp "ablo/internal/platform/net/http"

	"ablo/internal/modkit"
	"ablo/internal/modkit/httpkit"
	"ablo/internal/modkit/module"
	"ablo/internal/modkit/swaggerkit"

	hf "ablo/internal/adapters/inference/huggingface"
	"ablo/internal/adapters/pin/pinata"

	"ablo/internal/adapters/chain/story"
	assetsmod "ablo/internal/services/api/assets/module"
	imagesmod "ablo/internal/services/api/images/module"
	metamod "ablo/internal/services/api/meta/module"
	regsvc "ablo/internal/services/registrar/service"
	sdom "ablo/internal/services/storage/domain"
	storagesvc "ablo/internal/services/storage/service"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Logger *logger.Logger

	// adapter handles constructed once in main
	Local     cas.Store
	Pinning   *pinata.Client
	Inference *hf.Client
	Chain     *story.Client

	Retry          sdom.RetryPolicy
	VerifyDelay    time.Duration
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := opt.Logger
	if log == nil {
		log = logger.Get()
	}
	deps := modkit.Deps{
		Cfg: opt.Config,
		Log: *log,
	}

	// shared services behind the API verticals
	store := storagesvc.New(opt.Local, opt.Pinning, storagesvc.Options{Retry: opt.Retry})
	registrar := regsvc.New(store, opt.Chain, regsvc.Options{
		VerifyDelay: opt.VerifyDelay,
	})

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{
			Pinning: opt.Pinning,
			Chain:   opt.Chain,
		})),
		imagesmod.New(deps, modkit.WithPorts(imagesmod.Ports{
			Inference: opt.Inference,
		})),
		assetsmod.New(deps, modkit.WithPorts(assetsmod.Ports{
			Store:     store,
			Registrar: registrar,
		})),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			m.MountRoutes(api)
		}
	})
}
