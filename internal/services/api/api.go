// Package api provides the HTTP API for the application
package api

import (
	"leadrelay/internal/platform/config"
	"leadrelay/internal/platform/logger"
	phttp "leadrelay/internal/platform/net/http"
	"leadrelay/internal/platform/store"

	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/httpkit"
	"leadrelay/internal/modkit/module"
	"leadrelay/internal/modkit/swaggerkit"

	apiaccounts "leadrelay/internal/services/api/accounts/module"
	apiclassify "leadrelay/internal/services/api/classify/module"
	metamod "leadrelay/internal/services/api/meta/module"
	apipolicy "leadrelay/internal/services/api/policy/module"
	statsmod "leadrelay/internal/services/api/stats/module"
	taxdom "leadrelay/internal/services/api/taxonomy/domain"
	apitaxonomy "leadrelay/internal/services/api/taxonomy/module"

	// Worker modules own the durable ports the admin surface runs against
	accdom "leadrelay/internal/services/accounts/domain"
	workeraccounts "leadrelay/internal/services/accounts/module"
	workerpolicy "leadrelay/internal/services/policy/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
		RDS: opt.Store.RDS,
	}

	// Construct the WORKER modules first and extract their durable ports.
	// Policy precedes accounts so the pool reads live limits
	workerPolicy := workerpolicy.New(deps, workerpolicy.Options{})
	polPorts := module.MustPortsOf[workerpolicy.Ports](workerPolicy)

	workerAccounts := workeraccounts.New(deps, workeraccounts.Options{
		Limits: func() accdom.Limits {
			s := polPorts.Snapshot.Snapshot()
			return accdom.Limits{
				HourlyLimit:         s.HourlyLimit,
				FloodWaitMultiplier: s.FloodWaitMultiplier,
			}
		},
	})
	accPorts := module.MustPortsOf[workeraccounts.Ports](workerAccounts)

	// Inject the worker ports into the admin modules
	apiAccounts := apiaccounts.New(
		deps,
		modkit.WithPorts(apiaccounts.Ports{
			Registry: accPorts.Registry,
		}),
	)

	apiPolicy := apipolicy.New(
		deps,
		modkit.WithPorts(apipolicy.Ports{
			Snapshot: polPorts.Snapshot,
			Admin:    polPorts.Admin,
		}),
	)

	// Taxonomy owns the API process classify engine; classify scores with it
	apiTaxonomy := apitaxonomy.New(
		deps,
		modkit.WithPorts(taxdom.Ports{
			Admin: polPorts.Admin,
		}),
	)
	engine := module.MustPortsOf[apitaxonomy.Ports](apiTaxonomy).Engine

	apiClassify := apiclassify.New(
		deps,
		modkit.WithPorts(apiclassify.Ports{
			Engine: engine,
		}),
	)

	apiStats := statsmod.New(
		deps,
		modkit.WithPorts(statsmod.Ports{
			Registry: accPorts.Registry,
		}),
	)

	mods := []module.Module{
		metamod.New(deps),
		workerPolicy,   // include workers so their ports are registered
		workerAccounts, // for cross-module lookups
		apiAccounts,
		apiPolicy,
		apiTaxonomy,
		apiClassify,
		apiStats,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
