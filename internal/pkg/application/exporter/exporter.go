package exporter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"github.com/openroyale/clan-exporter/internal/pkg/application/flatten"
	"github.com/openroyale/clan-exporter/internal/pkg/infrastructure/csvfiles"
	"github.com/openroyale/clan-exporter/pkg/royale/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Exporter interface {
	Export(ctx context.Context) error
}

// Settings holds the defaults that apply when an export does not override
// them in the config file.
type Settings struct {
	ClanTag   string
	PlayerTag string
	OutputDir string
}

func New(cfg *Config, settings Settings, c client.RoyaleClient) Exporter {
	return &exporter{
		cfg:      cfg,
		settings: settings,
		client:   c,
	}
}

var tracer = otel.Tracer("clan-exporter")

type exporter struct {
	cfg      *Config
	settings Settings
	client   client.RoyaleClient
}

func (e *exporter) Export(ctx context.Context) error {
	var err error

	runID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "export",
		trace.WithAttributes(attribute.String("run-id", runID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx).With("run_id", runID)
	ctx = logging.NewContextWithLogger(ctx, log)

	for _, export := range e.cfg.Exports {
		err = e.exportOne(ctx, export)
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *exporter) exportOne(ctx context.Context, export ExportConfig) error {
	log := logging.GetFromContext(ctx)

	doc, err := e.fetch(ctx, export)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", export.Endpoint, err)
	}

	tables := flatten.Flatten(doc)

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Info("discovered tables", "endpoint", export.Endpoint, "tables", strings.Join(names, ","))

	outputDir := export.OutputDir
	if outputDir == "" {
		outputDir = e.settings.OutputDir
	}

	written, err := csvfiles.Write(ctx, outputDir, tables)
	if err != nil {
		return fmt.Errorf("failed to write tables: %w", err)
	}

	log.Info("export done", "endpoint", export.Endpoint, "files", len(written))

	return nil
}

func (e *exporter) fetch(ctx context.Context, export ExportConfig) (any, error) {
	tag := export.Tag

	switch export.Endpoint {
	case EndpointClan:
		if tag == "" {
			tag = e.settings.ClanTag
		}
		return e.client.Clan(ctx, tag)
	case EndpointRiverRaceLog:
		if tag == "" {
			tag = e.settings.ClanTag
		}
		return e.client.RiverRaceLog(ctx, tag)
	case EndpointCurrentRiverRace:
		if tag == "" {
			tag = e.settings.ClanTag
		}
		return e.client.CurrentRiverRace(ctx, tag)
	case EndpointPlayer:
		if tag == "" {
			tag = e.settings.PlayerTag
		}
		if tag == "" {
			return nil, fmt.Errorf("player exports require a player tag")
		}
		return e.client.Player(ctx, tag)
	}

	return nil, fmt.Errorf("unknown endpoint \"%s\"", export.Endpoint)
}
