// Package configload reads scheduler configuration documents from any
// location supported by afs (local files, mem://, cloud storage).
package configload

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/webriots/cosched"
)

// Service loads configs through an afs file system.
type Service struct {
	fs afs.Service
}

// New returns a loader backed by fs, or by afs.New() when fs is nil.
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Load downloads URL and decodes it over cosched.DefaultConfig, so absent
// fields keep their defaults. The format follows the extension: .yaml/.yml,
// .toml or .json. The result is validated.
func (s *Service) Load(ctx context.Context, URL string) (*cosched.Config, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	cfg := cosched.DefaultConfig()
	if err = Decode(path.Ext(URL), data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}

// Decode unmarshals data into cfg according to the file extension ext.
func Decode(ext string, data []byte, cfg *cosched.Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	}
	return fmt.Errorf("unsupported config format %q", ext)
}
