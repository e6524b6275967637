package exporter

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Exports), 2) // should find two exports
}

func TestLoadExport(t *testing.T) {
	is, config := setupConfigTest(t)

	export := config.Exports[0]
	is.Equal(export.Endpoint, EndpointClan)
	is.Equal(export.OutputDir, "out/clans")

	export = config.Exports[1]
	is.Equal(export.Endpoint, EndpointRiverRaceLog)
	is.Equal(export.Tag, "#XYZ987")
}

func TestLoadConfigRejectsUnknownEndpoints(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString("exports:\n  - endpoint: towers\n"))

	is.True(err != nil) // unknown endpoints are config errors
}

func TestDefaultConfigurationExportsTheClanOnce(t *testing.T) {
	is := is.New(t)

	config := DefaultConfiguration()

	is.Equal(len(config.Exports), 1)
	is.Equal(config.Exports[0].Endpoint, EndpointClan)
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	config, err := LoadConfiguration(bytes.NewBufferString(configFile))
	is.NoErr(err)

	return is, config
}

const configFile string = `
exports:
  - endpoint: clan
    outputDir: out/clans
  - endpoint: riverracelog
    tag: "#XYZ987"
`
