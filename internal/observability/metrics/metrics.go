package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	scoringRuns    metric.Int64Counter
	scoringErrors  metric.Int64Counter
	debtorsScored  metric.Int64Counter
	outreachEmails metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch protocol {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, errors.New("unsupported otlp metric protocol " + protocol)
	}
}

// New configures the domain metric instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "duespark"
	}
	meter := provider.Meter(name)

	scoringRuns, err := meter.Int64Counter("duespark_scoring_runs_total")
	if err != nil {
		return nil, err
	}
	scoringErrors, err := meter.Int64Counter("duespark_scoring_errors_total")
	if err != nil {
		return nil, err
	}
	debtorsScored, err := meter.Int64Counter("duespark_debtors_scored_total")
	if err != nil {
		return nil, err
	}
	outreachEmails, err := meter.Int64Counter("duespark_outreach_emails_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		scoringRuns:    scoringRuns,
		scoringErrors:  scoringErrors,
		debtorsScored:  debtorsScored,
		outreachEmails: outreachEmails,
	}, nil
}

// RecordScoringRun increments scoring run counts for the named engine.
func (m *Metrics) RecordScoringRun(ctx context.Context, engine string) {
	if m == nil {
		return
	}
	m.scoringRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("engine", engine)))
}

// RecordScoringError increments scoring failure counts for the named engine.
func (m *Metrics) RecordScoringError(ctx context.Context, engine string) {
	if m == nil {
		return
	}
	m.scoringErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("engine", engine)))
}

// RecordDebtorsScored adds the number of debtors written back in a run.
func (m *Metrics) RecordDebtorsScored(ctx context.Context, engine string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.debtorsScored.Add(ctx, count, metric.WithAttributes(attribute.String("engine", engine)))
}

// RecordOutreachEmail increments outbound reminder email counts.
func (m *Metrics) RecordOutreachEmail(ctx context.Context, channel string) {
	if m == nil {
		return
	}
	m.outreachEmails.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}
