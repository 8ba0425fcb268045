package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/cognicore/ngramq/internal/logger"
	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/cache"
	"github.com/cognicore/ngramq/pkg/ngramq/config"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
	"github.com/cognicore/ngramq/pkg/ngramq/store/filestore"
	"github.com/cognicore/ngramq/pkg/ngramq/store/sqlite"
)

// Version is stamped at build time.
var Version = "dev"

type appDeps struct {
	env    *config.Env
	closer io.Closer
	cache  *cache.Cache[[]analytics.NgramAggregate]
}

func newApp() *cli.App {
	rt := &appDeps{}
	return &cli.App{
		Name:    "ngramq",
		Usage:   "find the words in search queries that spend without converting",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file read before NGRAMQ_* variables"},
		},
		Before: func(c *cli.Context) error {
			env, err := config.ParseEnv(c.String("env-file"))
			if err != nil {
				return err
			}
			closer, err := logger.Configure(env)
			if err != nil {
				return err
			}
			rt.env = env
			rt.closer = closer
			rt.cache = cache.New[[]analytics.NgramAggregate](env.CacheTTL)
			return nil
		},
		After: func(c *cli.Context) error {
			if rt.closer != nil {
				return rt.closer.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCommand(rt),
			historyCommand(rt),
			stopwordsCommand(),
		},
	}
}

// openStore opens the history backend selected by the environment.
func openStore(ctx context.Context, env *config.Env) (store.Store, error) {
	switch env.StoreDriver {
	case "sqlite":
		return sqlite.OpenSQLite(ctx, env.StorePath)
	case "file":
		return filestore.Open(env.StorePath)
	}
	return nil, fmt.Errorf("unknown store driver %q", env.StoreDriver)
}
