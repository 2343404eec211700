package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/theme"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state across stages.
type BuildState struct {
	Generator *Generator
	Posts     []content.Post
	Pages     []render.Page
	Report    *BuildReport
	Theme     *theme.Theme
	Publisher *publish.Publisher
	start     time.Time
}

func newBuildState(g *Generator, report *BuildReport) *BuildState {
	return &BuildState{Generator: g, Report: report, start: time.Now()}
}

// namedStage pairs a stable stage name with its implementation.
type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timing and classification,
// stopping on the first fatal or canceled error.
func runStages(ctx context.Context, bs *BuildState, recorder metrics.Recorder, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.recordError(st.name, se)
			recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.name] = dur
		recorder.ObserveStageDuration(st.name, dur)

		if err == nil {
			bs.Report.bumpCount(st.name, StageErrorKind(""))
			recorder.IncStageResult(st.name, metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = newFatalStageError(st.name, err)
		}
		bs.Report.StageErrorKinds[st.name] = string(se.Kind)
		bs.Report.bumpCount(st.name, se.Kind)

		switch se.Kind {
		case StageErrorWarning:
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			recorder.IncStageResult(st.name, metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			bs.Report.Errors = append(bs.Report.Errors, se)
			recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
			bs.Report.Errors = append(bs.Report.Errors, se)
			recorder.IncStageResult(st.name, metrics.ResultFatal)
			return se
		}
	}
	return nil
}
