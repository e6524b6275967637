package exporter

import (
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v2"
)

const (
	EndpointClan             string = "clan"
	EndpointRiverRaceLog     string = "riverracelog"
	EndpointCurrentRiverRace string = "currentriverrace"
	EndpointPlayer           string = "player"
)

type ExportConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Tag       string `yaml:"tag"`
	OutputDir string `yaml:"outputDir"`
}

type Config struct {
	Exports []ExportConfig `yaml:"exports"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, cfg)
	if err != nil {
		return nil, err
	}

	for _, export := range cfg.Exports {
		if !validEndpoint(export.Endpoint) {
			return nil, fmt.Errorf("unknown endpoint \"%s\"", export.Endpoint)
		}
	}

	return cfg, nil
}

// DefaultConfiguration exports the configured clan once, which is what the
// tool does when no config file is provided.
func DefaultConfiguration() *Config {
	return &Config{
		Exports: []ExportConfig{{Endpoint: EndpointClan}},
	}
}

func validEndpoint(name string) bool {
	switch name {
	case EndpointClan, EndpointRiverRaceLog, EndpointCurrentRiverRace, EndpointPlayer:
		return true
	}
	return false
}
