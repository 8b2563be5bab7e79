package bridge

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/mcpbridge/server"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML config file.
type Config struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	Cors    *server.Cors      `yaml:"cors"`
}

// LoadConfig downloads and decodes the config at URL; any afs supported URL works.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := &Config{}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	return ret, nil
}
