// Package emit writes the site configuration in the formats the host
// generators read.
package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/fsutil"
	"git.home.luguber.info/inful/docnav/internal/hugo"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// File names written below the output directory.
const (
	VuePressFile = "config.json"
	YAMLFile     = "config.yaml"
	HugoDir      = "hugo"
)

// EncodeVuePress returns the configuration as indented VuePress JSON.
func EncodeVuePress(site *navigation.SiteConfig) ([]byte, error) {
	data, err := json.MarshalIndent(site, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode VuePress config: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeYAML returns the same document as EncodeVuePress in YAML.
func EncodeYAML(site *navigation.SiteConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(site); err != nil {
		return nil, fmt.Errorf("failed to encode YAML config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write emits site in every requested format below dir and returns the
// written paths. Duplicate formats are written once.
func Write(ctx context.Context, site *navigation.SiteConfig, dir string, formats []config.OutputFormat, hugoOpts hugo.Options) ([]string, error) {
	var written []string
	done := map[config.OutputFormat]bool{}
	for _, format := range formats {
		if done[format] {
			continue
		}
		done[format] = true
		if err := ctx.Err(); err != nil {
			return written, derrors.WrapError(err, derrors.CategoryRuntime, "emit canceled").Build()
		}

		paths, err := writeFormat(site, dir, format, hugoOpts)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
		slog.Debug("Emitted configuration", logfields.Format(string(format)), slog.Int("files", len(paths)))
	}
	return written, nil
}

func writeFormat(site *navigation.SiteConfig, dir string, format config.OutputFormat, hugoOpts hugo.Options) ([]string, error) {
	switch format {
	case config.FormatVuePress:
		return writeEncoded(site, filepath.Join(dir, VuePressFile), EncodeVuePress)
	case config.FormatYAML:
		return writeEncoded(site, filepath.Join(dir, YAMLFile), EncodeYAML)
	case config.FormatHugo:
		return hugo.NewGenerator(site, hugoOpts).Generate(filepath.Join(dir, HugoDir))
	default:
		return nil, derrors.ValidationError("unknown output format").
			WithContext("format", string(format)).
			Build()
	}
}

func writeEncoded(site *navigation.SiteConfig, path string, encode func(*navigation.SiteConfig) ([]byte, error)) ([]string, error) {
	data, err := encode(site)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "failed to encode configuration").Build()
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return []string{path}, nil
}
