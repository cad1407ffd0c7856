package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"activation-code-service/internal/domain/model"
	"activation-code-service/internal/domain/ports/repository"
)

// ImportReport summarizes one bulk import run.
type ImportReport struct {
	Read     int   // lines consumed (after offset, before limit)
	Valid    int   // lines that passed format validation
	Skipped  int   // lines dropped for bad format
	Inserted int64 // rows actually inserted (duplicates excluded)
}

type ImportUseCase interface {
	// ImportCodes reads newline-delimited codes from r and inserts them in
	// batches. Lines failing validation are skipped, duplicates are ignored
	// by the store, so re-running against a populated pool is safe.
	// offset skips leading lines (resume support); limit <= 0 means no cap.
	ImportCodes(ctx context.Context, r io.Reader, offset, limit int) (*ImportReport, error)
}

var _ ImportUseCase = (*importUC)(nil)

type importUC struct {
	codes     repository.ActivationCodeRepository
	batchSize int
	log       *zerolog.Logger
}

func NewImportUseCase(codes repository.ActivationCodeRepository, batchSize int, logger *zerolog.Logger) *importUC {
	if batchSize <= 0 {
		batchSize = 5000
	}
	return &importUC{codes: codes, batchSize: batchSize, log: logger}
}

func (uc *importUC) ImportCodes(ctx context.Context, r io.Reader, offset, limit int) (*ImportReport, error) {
	rep := &ImportReport{}
	batch := make([]string, 0, uc.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := uc.codes.InsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		rep.Inserted += n
		uc.log.Debug().Int("batch", len(batch)).Int64("inserted", n).Msg("import batch flushed")
		batch = batch[:0]
		return nil
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if line <= offset {
			continue
		}
		if limit > 0 && rep.Valid >= limit {
			break
		}
		rep.Read++

		code, err := model.NormalizeCode(sc.Text())
		if err != nil {
			rep.Skipped++
			continue
		}
		rep.Valid++
		batch = append(batch, code)
		if len(batch) >= uc.batchSize {
			if err := flush(); err != nil {
				return rep, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("read codes: %w", err)
	}
	if err := flush(); err != nil {
		return rep, err
	}

	uc.log.Info().
		Int("read", rep.Read).
		Int("valid", rep.Valid).
		Int("skipped", rep.Skipped).
		Int64("inserted", rep.Inserted).
		Msg("import finished")
	return rep, nil
}
