package bot

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/strikerbot/planner/internal/bot"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks           metric.Int64Counter
	fallbacks       metric.Int64Counter
	planSwitches    metric.Int64Counter
	pathRefreshes   metric.Int64Counter
	predictionError metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	if out.ticks, err = m.Int64Counter("bot.ticks",
		metric.WithDescription("Ticks answered")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if out.fallbacks, err = m.Int64Counter("bot.fallbacks",
		metric.WithDescription("Ticks answered by the fallback output")); err != nil {
		return nil, fmt.Errorf("creating fallbacks counter: %w", err)
	}
	if out.planSwitches, err = m.Int64Counter("bot.plan.switches",
		metric.WithDescription("Plans started")); err != nil {
		return nil, fmt.Errorf("creating plan switch counter: %w", err)
	}
	if out.pathRefreshes, err = m.Int64Counter("bot.path.refreshes",
		metric.WithDescription("Ball path resimulations")); err != nil {
		return nil, fmt.Errorf("creating path refresh counter: %w", err)
	}
	if out.predictionError, err = m.Float64Histogram("bot.prediction.error",
		metric.WithDescription("Distance between predicted and observed ball position"),
		metric.WithUnit("{uu/50}")); err != nil {
		return nil, fmt.Errorf("creating prediction error histogram: %w", err)
	}
	return &out, nil
}
