// Command notes-init prepares storage for the notes service: it creates the
// record location and writes the default token set when none exists.
package main

import (
	"context"
	"os"
	"time"

	"github.com/gonotes/notes-service/internal/config"
	"github.com/gonotes/notes-service/internal/server"
	"github.com/gonotes/notes-service/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := server.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer st.Close(context.Background())

	for dep, ok := range st.Ready(ctx) {
		if !ok {
			logger.Fatalf("%s store is not reachable", dep)
		}
	}

	created, err := st.Tokens.EnsureDefault(ctx, cfg.Storage.DefaultLabel, cfg.Storage.DefaultToken)
	if err != nil {
		logger.Fatalf("failed to initialize token set: %v", err)
	}
	if created {
		logger.Infof("created default token set for label %q", cfg.Storage.DefaultLabel)
	} else {
		logger.Info("token set already present; left unchanged")
	}

	ids, err := st.Records.Keys(ctx)
	if err != nil {
		logger.Fatalf("failed to list notes: %v", err)
	}
	logger.Infof("%s storage ready with %d notes", cfg.Storage.Backend, len(ids))
}
