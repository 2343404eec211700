package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
	OutcomeSkipped  BuildOutcome = "skipped"
)

// StageCount aggregates classification counts for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// BuildReport captures high-level metrics about a site generation run.
type BuildReport struct {
	SchemaVersion   int
	Posts           int // posts in the rendered set
	Drafts          int // drafts excluded from (or, in preview, included in) the set
	Pages           int // HTML pages written
	Assets          int // bundle assets copied
	Start           time.Time
	End             time.Time
	Errors          []error
	Warnings        []error
	StageDurations  map[string]time.Duration
	StageErrorKinds map[string]string
	StageCounts     map[string]StageCount
	Outcome         string       // string form kept for JSON consumers
	OutcomeT        BuildOutcome // typed mirror (source of truth)
	// SkipReason indicates why the pipeline was short-circuited
	// (e.g. "no_changes"). Empty if the full pipeline ran.
	SkipReason string
	BuildHash  string // input fingerprint the output was built from
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[string]string),
		StageCounts:     make(map[string]StageCount),
	}
}

func (r *BuildReport) finish() { r.End = time.Now() }

// recordError stores a stage error that aborted the build.
func (r *BuildReport) recordError(stage string, se *StageError) {
	r.Errors = append(r.Errors, se)
	r.StageErrorKinds[stage] = string(se.Kind)
	r.bumpCount(stage, se.Kind)
}

// bumpCount increments the classification counter for a stage. An empty kind
// counts as success.
func (r *BuildReport) bumpCount(stage string, kind StageErrorKind) {
	sc := r.StageCounts[stage]
	switch kind {
	case StageErrorWarning:
		sc.Warning++
	case StageErrorFatal:
		sc.Fatal++
	case StageErrorCanceled:
		sc.Canceled++
	default:
		sc.Success++
	}
	r.StageCounts[stage] = sc
}

// deriveOutcome sets the Outcome fields based on recorded errors and warnings.
func (r *BuildReport) deriveOutcome() {
	if r.SkipReason != "" {
		r.setOutcome(OutcomeSkipped)
		return
	}
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.setOutcome(OutcomeCanceled)
				return
			}
		}
		r.setOutcome(OutcomeFailed)
		return
	}
	if len(r.Warnings) > 0 {
		r.setOutcome(OutcomeWarning)
		return
	}
	r.setOutcome(OutcomeSuccess)
}

func (r *BuildReport) setOutcome(o BuildOutcome) {
	r.OutcomeT = o
	r.Outcome = string(o)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("posts=%d pages=%d assets=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Posts, r.Pages, r.Assets, dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// Persist writes the report atomically into the final output directory as
// build-report.json plus a one-line build-report.txt summary. Best effort;
// errors are returned for caller logging but do not change the build outcome.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}

	jb, err := json.MarshalIndent(r.sanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}

	summaryPath := filepath.Join(root, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// buildReportSerializable mirrors BuildReport with string errors for JSON output.
type buildReportSerializable struct {
	SchemaVersion   int                      `json:"schema_version"`
	Posts           int                      `json:"posts"`
	Drafts          int                      `json:"drafts"`
	Pages           int                      `json:"pages"`
	Assets          int                      `json:"assets"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	Outcome         string                   `json:"outcome"`
	SkipReason      string                   `json:"skip_reason,omitempty"`
	BuildHash       string                   `json:"build_hash,omitempty"`
}

func (r *BuildReport) sanitizedCopy() *buildReportSerializable {
	s := &buildReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		Posts:           r.Posts,
		Drafts:          r.Drafts,
		Pages:           r.Pages,
		Assets:          r.Assets,
		Start:           r.Start,
		End:             r.End,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  r.StageDurations,
		StageErrorKinds: r.StageErrorKinds,
		StageCounts:     r.StageCounts,
		Outcome:         r.Outcome,
		SkipReason:      r.SkipReason,
		BuildHash:       r.BuildHash,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}
