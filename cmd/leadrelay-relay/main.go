package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadrelay/internal/modkit"
	"leadrelay/internal/modkit/module"
	"leadrelay/internal/platform/config"
	"leadrelay/internal/platform/logger"
	"leadrelay/internal/platform/store"

	"leadrelay/internal/adapters/session/botapi"
	accdom "leadrelay/internal/services/accounts/domain"
	accmod "leadrelay/internal/services/accounts/module"
	polmod "leadrelay/internal/services/policy/module"
	recmod "leadrelay/internal/services/records/module"
	reldom "leadrelay/internal/services/relay/domain"
	relmod "leadrelay/internal/services/relay/module"
)

// resolveToken maps a credentials ref onto a bot token.
// "env:NAME" reads the named environment variable, anything else is taken
// as the token itself
func resolveToken(ref string) (string, bool) {
	if name, ok := strings.CutPrefix(ref, "env:"); ok {
		tok := os.Getenv(name)
		return tok, tok != ""
	}
	return ref, ref != ""
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")
	botCfg := root.Prefix("RELAY_BOT_")

	l := logger.Get()

	// all three stores are required, the relay stays down rather than run
	// with partial state
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientName: "leadrelay",
			ClientTag:  "relay",
		},
		RDS: store.RedisConfig{
			Enabled:  true,
			Addr:     rdsCfg.MustString("ADDR"),
			DB:       rdsCfg.MayInt("DB", 0),
			Password: rdsCfg.MayString("PASSWORD", ""),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		RDS: st.RDS,
		Log: *l,
	}

	// Policy first so the pool reads live limits
	policy := polmod.New(deps, polmod.Options{})
	polPorts := module.MustPortsOf[polmod.Ports](policy)

	accounts := accmod.New(deps, accmod.Options{
		Limits: func() accdom.Limits {
			s := polPorts.Snapshot.Snapshot()
			return accdom.Limits{
				HourlyLimit:         s.HourlyLimit,
				FloodWaitMultiplier: s.FloodWaitMultiplier,
			}
		},
	})
	accPorts := module.MustPortsOf[accmod.Ports](accounts)

	records := recmod.New(deps, recmod.Options{})
	recPorts := module.MustPortsOf[recmod.Ports](records)

	// Session tokens resolve through the live pool so newly added accounts
	// pick up credentials without a restart
	sess := botapi.New(botapi.Options{
		BaseURL:   botCfg.MustString("BASE_URL"),
		UserAgent: botCfg.MayString("UA", "leadrelay-relay"),
		Timeout:   botCfg.MayDuration("TIMEOUT", 10*time.Second),
		PollWait:  botCfg.MayDuration("POLL_WAIT", 25*time.Second),
		PollLimit: botCfg.MayInt("POLL_LIMIT", 100),
		Tokens: func(accountID string) (string, bool) {
			acct, ok := accPorts.Pool.Get(accountID)
			if !ok || acct.CredentialsRef == "" {
				return "", false
			}
			return resolveToken(acct.CredentialsRef)
		},
	})

	relay := relmod.New(deps, relmod.Options{}, modkit.WithPorts(reldom.Ports{
		Pool:    accPorts.Pool,
		Sync:    accPorts.Sync,
		Policy:  polPorts.Snapshot,
		Admin:   polPorts.Admin,
		Senders: polPorts.Senders,
		Writer:  recPorts.Writer,
		Dedup:   recPorts.Dedup,
		Session: sess,
	}))

	for _, m := range []module.Module{policy, accounts, records, relay} {
		module.Register(m.Name(), m.Ports())
	}

	ports := module.MustPortsOf[relmod.Ports](relay)

	// SIGINT/SIGTERM cancel the run context; Run drains in flight work
	// before returning
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ports.Worker.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("relay worker failed")
	}
}
