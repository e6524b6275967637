package main

import (
	"context"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/joho/godotenv"
	"github.com/openroyale/clan-exporter/internal/pkg/application/exporter"
	"github.com/openroyale/clan-exporter/pkg/royale/client"
)

const (
	appName string = "clan-exporter"

	defaultAPIURL    string = "https://api.clashroyale.com"
	defaultOutputDir string = "download"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	err := godotenv.Load()
	if err != nil {
		log.Warn("no .env file loaded", "err", err.Error())
	}

	apiToken := env.GetVariableOrDie(ctx, "API_TOKEN", "api token for the clash royale api")
	clanTag := env.GetVariableOrDie(ctx, "CLAN_TAG", "tag of the clan to export")

	settings := exporter.Settings{
		ClanTag:   clanTag,
		PlayerTag: env.GetVariableOrDefault(ctx, "PLAYER_TAG", ""),
		OutputDir: env.GetVariableOrDefault(ctx, "OUTPUT_DIR", defaultOutputDir),
	}

	cfg, err := loadConfiguration(ctx)
	if err != nil {
		log.Error("failed to load configuration", "err", err.Error())
		os.Exit(1)
	}

	c := client.New(
		env.GetVariableOrDefault(ctx, "ROYALE_API_URL", defaultAPIURL),
		apiToken,
		client.Debug(env.GetVariableOrDefault(ctx, "ROYALE_CLIENT_DEBUG", "false")),
	)

	err = exporter.New(cfg, settings, c).Export(ctx)
	if err != nil {
		log.Error("export failed", "err", err.Error())
		os.Exit(1)
	}

	log.Info("done")
}

func loadConfiguration(ctx context.Context) (*exporter.Config, error) {
	configPath := env.GetVariableOrDefault(ctx, "CONFIG_FILE", "")
	if configPath == "" {
		return exporter.DefaultConfiguration(), nil
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return exporter.LoadConfiguration(f)
}
