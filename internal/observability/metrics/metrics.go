package metrics

import (
	"context"
	"fmt"
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
	eligibilityChecks metric.Int64Counter
	promotions        metric.Int64Counter
	snapshotsAppended metric.Int64Counter
	checkins          metric.Int64Counter
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

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "arkloyalty"
	}
	meter := provider.Meter(name)

	eligibilityChecks, err := meter.Int64Counter("arkloyalty_eligibility_checks_total")
	if err != nil {
		return nil, err
	}
	promotions, err := meter.Int64Counter("arkloyalty_promotions_total")
	if err != nil {
		return nil, err
	}
	snapshotsAppended, err := meter.Int64Counter("arkloyalty_snapshots_appended_total")
	if err != nil {
		return nil, err
	}
	checkins, err := meter.Int64Counter("arkloyalty_checkins_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		eligibilityChecks: eligibilityChecks,
		promotions:        promotions,
		snapshotsAppended: snapshotsAppended,
		checkins:          checkins,
	}, nil
}

// RecordEligibilityCheck increments eligibility evaluation counts.
func (m *Metrics) RecordEligibilityCheck(ctx context.Context, eligible bool) {
	if m == nil {
		return
	}
	outcome := "ineligible"
	if eligible {
		outcome = "eligible"
	}
	attrs := FilterAttributes(attribute.String("outcome", outcome))
	m.eligibilityChecks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPromotion increments promotion counts by reached rank.
func (m *Metrics) RecordPromotion(ctx context.Context, rank string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("rank", strings.TrimSpace(rank)))
	m.promotions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshotAppended increments snapshot counts by source.
func (m *Metrics) RecordSnapshotAppended(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.snapshotsAppended.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheckin increments daily check-in counts.
func (m *Metrics) RecordCheckin(ctx context.Context) {
	if m == nil {
		return
	}
	m.checkins.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome": {},
	"rank":    {},
	"source":  {},
	"route":   {},
	"status":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
