// Package state persists build history and input fingerprints so that
// repeat builds with unchanged inputs can be skipped.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// fileHash pairs a content-relative path with the sha256 of its bytes.
type fileHash struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Fingerprint is a deterministic digest of everything that influences a build:
// the content tree, the effective configuration, the theme selection, and the
// per-invocation build options.
type Fingerprint struct {
	Files      []fileHash   `json:"files"`
	ConfigHash string       `json:"config_hash"`
	Options    BuildOptions `json:"options"`
	BuildHash  string       `json:"build_hash"`
}

// BuildOptions captures the invocation flags that change the rendered output
// without touching any input file. They hash into BuildHash so a flag change
// never hits the unchanged-inputs skip.
type BuildOptions struct {
	IncludeDrafts bool `json:"include_drafts"`
	PageSize      int  `json:"page_size"`
}

// ComputeFingerprint walks the content directory and hashes every regular file
// together with the serialized configuration and the build options. Two builds
// with equal BuildHash values produce identical output.
func ComputeFingerprint(cfg *config.Config, opts BuildOptions) (*Fingerprint, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	files, err := hashTree(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("hash content tree: %w", err)
	}
	if themeDir := cfg.ThemePath(); themeDir != "" {
		themeFiles, err := hashTree(themeDir)
		if err != nil {
			return nil, fmt.Errorf("hash theme tree: %w", err)
		}
		files = append(files, themeFiles...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	configHash, err := hashConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}

	fp := &Fingerprint{Files: files, ConfigHash: configHash, Options: opts}
	data, err := json.Marshal(struct {
		Files      []fileHash   `json:"files"`
		ConfigHash string       `json:"config_hash"`
		Options    BuildOptions `json:"options"`
	}{fp.Files, fp.ConfigHash, fp.Options})
	if err != nil {
		return nil, fmt.Errorf("marshal fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	fp.BuildHash = hex.EncodeToString(sum[:])
	return fp, nil
}

func hashTree(root string) ([]fileHash, error) {
	var files []fileHash
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		h, err := hashFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, fileHash{Path: filepath.ToSlash(filepath.Join(filepath.Base(root), rel)), Hash: h})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashConfig(cfg *config.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
