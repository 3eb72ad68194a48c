package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Scraper runs one full pass: listing, resolve, collect, assemble, write.
type Scraper struct {
	cfg    *Config
	source PageSource
	run    *RunContext
	log    *zap.Logger

	// Optional sinks; nil disables them.
	store  *Store
	api    *API
	images *ImageSaver
	out    io.Writer
}

// NewScraper wires a scraper around an already configured page source.
func NewScraper(cfg *Config, source PageSource, run *RunContext, log *zap.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		source: source,
		run:    run,
		log:    log.With(zap.String("run_id", run.RunID)),
	}
}

// WithStore mirrors the finished dataset into s.
func (s *Scraper) WithStore(store *Store) *Scraper {
	s.store = store
	return s
}

// WithAPI publishes the finished dataset on api.
func (s *Scraper) WithAPI(api *API) *Scraper {
	s.api = api
	return s
}

// WithImages saves each entity's artwork with saver after the dataset is written.
func (s *Scraper) WithImages(saver *ImageSaver) *Scraper {
	s.images = saver
	return s
}

// WithSummary prints the run summary to w when the pass ends.
func (s *Scraper) WithSummary(w io.Writer) *Scraper {
	s.out = w
	return s
}

// Run performs the pass. Only a listing failure or a failed CSV write is
// returned as an error; per-entity failures are recorded on the run context.
// The CSV is written once, after every entity has been visited.
func (s *Scraper) Run(ctx context.Context) (*Dataset, error) {
	s.log.Info("Fetching listing", zap.String("url", s.cfg.ListingURL))
	anchors, err := FetchListing(s.source, s.cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}

	refs, err := ResolveReferences(s.cfg.BaseURL, anchors)
	if err != nil {
		return nil, err
	}
	s.log.Info("Resolved entities",
		zap.Int("anchors", len(anchors)),
		zap.Int("unique", len(refs)),
	)

	outcomes := Collect(s.source, refs, s.run, s.log)
	ds := AssembleDataset(refs, outcomes)

	if err := ds.SaveCSV(s.cfg.Output); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}
	s.log.Info("Data saved",
		zap.String("file", s.cfg.Output),
		zap.Int("rows", len(ds.Records)),
		zap.Int("skipped", len(s.run.Snapshot().Skipped)),
	)

	if s.store != nil {
		if err := s.store.SaveRecords(ctx, s.run.RunID, ds.Records); err != nil {
			s.log.Error("Store records failed", zap.Error(err))
		}
	}
	if s.images != nil {
		if err := s.images.SaveAll(outcomes, s.run); err != nil {
			s.log.Error("Save images failed", zap.Error(err))
		}
		snap := s.run.Snapshot()
		s.log.Info("Images done",
			zap.Int("saved", snap.ImagesSaved),
			zap.Int("existing", snap.ImagesExisting),
			zap.Int("failed", len(snap.ImageFailures)),
		)
	}
	if s.api != nil {
		s.api.SetDataset(ds)
	}
	if s.out != nil {
		PrintSummary(s.out, s.run.Snapshot(), ds)
	}
	return ds, nil
}
