package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/ppiankov/arrests/internal/cache"
	"github.com/ppiankov/arrests/internal/extract"
	"github.com/ppiankov/arrests/internal/model"
	"github.com/ppiankov/arrests/internal/report"
	"github.com/ppiankov/arrests/internal/store"
	"github.com/rs/zerolog/log"
)

// Extractor turns a fetched report into arrest rows
type Extractor interface {
	Extract(r io.ReaderAt, size int64) ([]model.ArrestRecord, error)
}

// Pipeline runs fetch, extract, load and report for one report URL
type Pipeline struct {
	fetcher   *Fetcher
	extractor Extractor
	dbPath    string
	out       io.Writer
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithExtractor replaces the default positional extractor
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithOutput sets where the status line is written (default stdout)
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	p := &Pipeline{
		fetcher:   NewFetcher(cfg.HTTP, c),
		extractor: extract.NewArrestExtractor(),
		dbPath:    cfg.Store.Path,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a completed run
type Result struct {
	RunID   string
	Status  string
	Records int
	DBPath  string
	Meta    model.FetchMeta
}

// Run loads the report at url into a fresh arrests table and returns the
// status line of the first stored row
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	res := &Result{
		RunID:  uuid.NewString(),
		DBPath: p.dbPath,
	}
	logger := log.With().Str("run_id", res.RunID).Str("url", url).Logger()

	err := p.fetcher.WithDocument(ctx, url, func(doc *Document) error {
		res.Meta = doc.Meta
		if doc.FinalURL != url {
			logger = logger.With().Str("final_url", doc.FinalURL).Logger()
		}

		// 1. Extract rows
		records, err := p.extractor.Extract(doc, doc.Size)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		res.Records = len(records)
		logger.Debug().Int("records", len(records)).Int64("bytes", doc.Size).Msg("extracted report")

		// 2. Recreate the table
		db, err := store.Create(ctx, p.dbPath)
		if err != nil {
			return fmt.Errorf("create store: %w", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("close store")
			}
		}()

		// 3. Load rows
		if err := db.Populate(ctx, records); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
		logger.Info().Int("records", len(records)).Str("db", p.dbPath).Msg("arrests loaded")

		// 4. Report first row
		status, err := report.Status(ctx, db, p.out)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		res.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
