package provider

import (
	"context"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// TON transfer fees are flat in practice, so this provider quotes the
// network's well-known base fees without a network round trip.
const (
	tonFeeSlow     = 0.0055
	tonFeeStandard = 0.0055
	tonFeeFast     = 0.011
)

type TonCenterGasProvider struct {
	tracer trace.Tracer
}

func NewTonCenterGasProvider(tracer trace.Tracer) *TonCenterGasProvider {
	return &TonCenterGasProvider{tracer: tracer}
}

func (p *TonCenterGasProvider) Name() string { return "toncenter" }

func (p *TonCenterGasProvider) FetchGas(ctx context.Context) (*domain.GasQuote, error) {
	_, span := p.tracer.Start(ctx, "toncenter.fetch-gas")
	defer span.End()

	return &domain.GasQuote{
		Blockchain: "ton",
		Slow:       tonFeeSlow,
		Standard:   tonFeeStandard,
		Fast:       tonFeeFast,
		Unit:       domain.UnitTON,
		Source:     p.Name(),
		ObservedAt: time.Now().UTC(),
	}, nil
}
