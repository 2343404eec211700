// Package publish writes rendered pages and static assets to the output
// tree. All writes go to an isolated staging directory that is atomically
// promoted on success, so a failed build never leaves a half-written tree in
// place of the previous output.
package publish

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	berrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Publisher stages output for one build and promotes it on Finalize.
type Publisher struct {
	outputDir  string
	stageDir   string
	keepBackup bool
}

// New creates a publisher targeting the given final output directory.
func New(outputDir string) *Publisher {
	return &Publisher{outputDir: filepath.Clean(outputDir)}
}

// KeepBackup controls whether the previous output is kept at `<output>.prev`
// after a successful promote instead of being removed.
func (p *Publisher) KeepBackup(keep bool) { p.keepBackup = keep }

// Begin creates an isolated staging directory as a sibling of the output
// directory (`<output>_stage`).
func (p *Publisher) Begin() error {
	stage := p.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return berrors.WriteFailed(stage, err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return berrors.WriteFailed(stage, err)
	}
	p.stageDir = stage
	slog.Debug("Initialized staging directory", "staging", stage, "final", p.outputDir)
	return nil
}

// StageDir returns the current staging directory (empty outside a build).
func (p *Publisher) StageDir() string { return p.stageDir }

// WriteFile writes one output file under the staging root, creating parent
// directories as needed. rel is slash-separated.
func (p *Publisher) WriteFile(rel string, data []byte) error {
	if p.stageDir == "" {
		return berrors.New(berrors.CategoryInternal, berrors.SeverityFatal, "publisher used before Begin")
	}
	dest := filepath.Join(p.stageDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return berrors.WriteFailed(dest, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return berrors.WriteFailed(dest, err)
	}
	return nil
}

// CopyFile copies a single source file to rel under the staging root.
func (p *Publisher) CopyFile(src, rel string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return berrors.WriteFailed(src, err)
	}
	return p.WriteFile(rel, data)
}

// CopyTree copies a directory tree unmodified into rel under the staging
// root ("" for the staging root itself). Used for theme static assets.
func (p *Publisher) CopyTree(srcDir, rel string) error {
	return filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return berrors.WriteFailed(path, err)
		}
		if d.IsDir() {
			return nil
		}
		sub, err := filepath.Rel(srcDir, path)
		if err != nil {
			return berrors.WriteFailed(path, err)
		}
		return p.CopyFile(path, filepath.ToSlash(filepath.Join(rel, sub)))
	})
}

// Finalize atomically promotes the staging directory to the final output
// location. Strategy:
//  1. Move existing outputDir (if exists) to outputDir.prev.
//  2. Rename staging -> outputDir.
//  3. Remove the previous backup best-effort (kept when KeepBackup is set).
func (p *Publisher) Finalize() error {
	if p.stageDir == "" {
		return berrors.New(berrors.CategoryInternal, berrors.SeverityFatal, "no staging directory initialized")
	}
	if _, err := os.Stat(p.stageDir); err != nil {
		return berrors.WriteFailed(p.stageDir, fmt.Errorf("staging directory missing: %w", err))
	}

	prev := p.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return berrors.WriteFailed(prev, err)
	}
	if _, err := os.Stat(p.outputDir); err == nil {
		if err := os.Rename(p.outputDir, prev); err != nil {
			return berrors.WriteFailed(p.outputDir, fmt.Errorf("backup existing output: %w", err))
		}
	}
	if err := os.Rename(p.stageDir, p.outputDir); err != nil {
		return berrors.WriteFailed(p.outputDir, fmt.Errorf("promote staging: %w", err))
	}
	p.stageDir = ""

	if p.keepBackup {
		slog.Debug("Keeping previous output backup", "path", prev)
	} else if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous backup", "path", prev, "error", err)
	}
	slog.Info("Promoted staging directory", "output", p.outputDir)
	return nil
}

// Abort removes the staging directory after a failed build so no orphaned
// partial output remains.
func (p *Publisher) Abort() {
	if p.stageDir == "" {
		return
	}
	dir := p.stageDir
	p.stageDir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", "staging", dir, "error", err)
	} else {
		slog.Debug("Removed staging directory after abort", "staging", dir)
	}
}
