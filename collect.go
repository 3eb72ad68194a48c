package main

import (
	"sync"

	"go.uber.org/zap"
)

// Outcome statuses carried by progress events.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
	StatusSkipped  = "skipped"
)

// ProgressEvent is emitted once per processed entity.
type ProgressEvent struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Skipped   int    `json:"skipped"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// SkippedEntity is a reference that produced no record.
type SkippedEntity struct {
	Reference EntityReference `json:"reference"`
	Reason    string          `json:"reason"`
}

// RunSnapshot is a copy of the run counters safe to hand to other goroutines.
type RunSnapshot struct {
	RunID         string          `json:"run_id"`
	Total         int             `json:"total"`
	Processed     int             `json:"processed"`
	Skipped       []SkippedEntity `json:"skipped"`
	FieldProblems map[string]int  `json:"field_problems"`
	Finished      bool            `json:"finished"`

	ImagesSaved    int             `json:"images_saved"`
	ImagesExisting int             `json:"images_existing"`
	ImageFailures  []SkippedEntity `json:"image_failures,omitempty"`
}

// RunContext carries the counters of one collection pass. The collection
// loop is its only writer; Snapshot may be called from any goroutine.
type RunContext struct {
	RunID string
	// OnProgress, when set, is called synchronously after each entity.
	OnProgress func(ProgressEvent)

	mu            sync.RWMutex
	total         int
	processed     int
	skipped       []SkippedEntity
	fieldProblems map[string]int
	finished      bool

	imagesSaved    int
	imagesExisting int
	imageFailures  []SkippedEntity
}

// NewRunContext returns an empty context for the given run.
func NewRunContext(runID string) *RunContext {
	return &RunContext{
		RunID:         runID,
		fieldProblems: make(map[string]int),
	}
}

// Processed returns how many entities have been handled so far.
func (rc *RunContext) Processed() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.processed
}

// Snapshot copies the current counters.
func (rc *RunContext) Snapshot() RunSnapshot {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	problems := make(map[string]int, len(rc.fieldProblems))
	for k, v := range rc.fieldProblems {
		problems[k] = v
	}
	return RunSnapshot{
		RunID:         rc.RunID,
		Total:         rc.total,
		Processed:     rc.processed,
		Skipped:       append([]SkippedEntity(nil), rc.skipped...),
		FieldProblems: problems,
		Finished:      rc.finished,

		ImagesSaved:    rc.imagesSaved,
		ImagesExisting: rc.imagesExisting,
		ImageFailures:  append([]SkippedEntity(nil), rc.imageFailures...),
	}
}

func (rc *RunContext) begin(total int) {
	rc.mu.Lock()
	rc.total = total
	rc.mu.Unlock()
}

func (rc *RunContext) finish() {
	rc.mu.Lock()
	rc.finished = true
	rc.mu.Unlock()
}

func (rc *RunContext) recordImage(ref EntityReference, status imageStatus, err error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	switch status {
	case imageSaved:
		rc.imagesSaved++
	case imageExisting:
		rc.imagesExisting++
	case imageFailed:
		rc.imageFailures = append(rc.imageFailures, SkippedEntity{Reference: ref, Reason: err.Error()})
	}
}

func (rc *RunContext) record(out Outcome) ProgressEvent {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.processed++
	ev := ProgressEvent{
		RunID:  rc.RunID,
		Name:   out.Reference.Name,
		URL:    out.Reference.URL,
		Status: StatusComplete,
	}

	switch {
	case out.Skipped():
		reason := ""
		if out.Err != nil {
			reason = out.Err.Error()
		}
		rc.skipped = append(rc.skipped, SkippedEntity{Reference: out.Reference, Reason: reason})
		ev.Status = StatusSkipped
		ev.Error = reason
	case len(out.Problems) > 0:
		ev.Status = StatusPartial
	}
	for _, p := range out.Problems {
		rc.fieldProblems[p.Field]++
	}

	ev.Processed = rc.processed
	ev.Total = rc.total
	ev.Skipped = len(rc.skipped)
	return ev
}

// Collect visits every reference in order, extracts its record and reports
// progress through run. A fetch or extraction failure skips that entity only.
// Pacing between requests is left to src.
func Collect(src PageSource, refs []EntityReference, run *RunContext, log *zap.Logger) []Outcome {
	run.begin(len(refs))
	defer run.finish()

	outcomes := make([]Outcome, 0, len(refs))
	for _, ref := range refs {
		out := collectOne(src, ref)
		ev := run.record(out)

		switch ev.Status {
		case StatusSkipped:
			log.Warn("Skipped entity",
				zap.String("name", ref.Name),
				zap.String("url", ref.URL),
				zap.Error(out.Err),
			)
		case StatusPartial:
			for _, p := range out.Problems {
				log.Debug("Field problem",
					zap.String("name", ref.Name),
					zap.String("field", p.Field),
					zap.Error(p),
				)
			}
		}
		log.Info("Collected",
			zap.Int("processed", ev.Processed),
			zap.Int("total", ev.Total),
			zap.String("name", ref.Name),
			zap.String("status", ev.Status),
		)

		if run.OnProgress != nil {
			run.OnProgress(ev)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func collectOne(src PageSource, ref EntityReference) Outcome {
	doc, err := src.Fetch(ref.URL)
	if err != nil {
		return Outcome{Reference: ref, Err: err}
	}
	imageURL := ArtworkURL(doc.Selection)
	rec, problems, err := ExtractRecord(doc.Selection, ref)
	if err != nil {
		return Outcome{Reference: ref, Err: err, ImageURL: imageURL}
	}
	return Outcome{Reference: ref, Record: rec, Problems: problems, ImageURL: imageURL}
}
