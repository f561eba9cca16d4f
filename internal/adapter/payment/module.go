package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the payment gateway implementation to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (Gateway, error) {
	if p.Config.PaymentGatewayAddress == "" {
		p.Logger.Info("payment gateway not configured, charges are simulated")
		return SimulatedGateway{}, nil
	}
	gw, err := NewHTTPGateway(p.Config.PaymentGatewayAddress, p.Logger)
	if err != nil {
		return nil, err
	}
	return gw, nil
}
