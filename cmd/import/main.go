// File: cmd/import/main.go
// Bulk-loads activation codes from a newline-delimited file into the store.
// Safe to re-run: duplicate codes are ignored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"activation-code-service/internal/config"
	pg "activation-code-service/internal/infra/db/postgres"
	"activation-code-service/internal/infra/logging"
	"activation-code-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	filePath := flag.String("file", "codes.txt", "newline-delimited code file")
	offset := flag.Int("offset", 0, "skip this many leading lines (resume)")
	limit := flag.Int("limit", 0, "max codes to import, 0 = all")
	batchSize := flag.Int("batch", 0, "batch size, 0 = config default")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *filePath).Msg("open code file")
	}
	defer f.Close()

	size := cfg.Import.BatchSize
	if *batchSize > 0 {
		size = *batchSize
	}
	importUC := usecase.NewImportUseCase(pg.NewActivationCodeRepo(pool), size, logger)

	rep, err := importUC.ImportCodes(ctx, f, *offset, *limit)
	if err != nil {
		logger.Fatal().Err(err).Msg("import failed")
	}

	fmt.Printf("read=%d valid=%d skipped=%d inserted=%d\n", rep.Read, rep.Valid, rep.Skipped, rep.Inserted)
}
