package events

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the event publisher selected by configuration.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) (Publisher, error) {
	if p.Config.AMQPURL == "" {
		p.Logger.Info("rabbitmq not configured, order events are logged")
		return NewLogPublisher(p.Logger), nil
	}
	pub, err := NewRabbitPublisher(p.Config.AMQPURL, p.Config.AMQPExchange)
	if err != nil {
		return nil, err
	}
	return pub, nil
}
