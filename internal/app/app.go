package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		newHTTPServer,
		newEventDispatcher,
		func(f *StorefrontFacade) adminProvisioner { return f },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: p.Config.RequestTimeout,
	}
}

type dispatcherParams struct {
	fx.In

	Publisher worker.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newEventDispatcher(p dispatcherParams) *worker.EventDispatcher {
	return worker.NewEventDispatcher(
		p.Publisher,
		p.Config.EventBuffer,
		p.Config.EventWorkers,
		p.Config.EventRetryInterval,
		p.Logger,
	)
}

type adminProvisioner interface {
	EnsureAdmin(ctx context.Context, email, password string) error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.EventDispatcher
	Publisher  events.Publisher `optional:"true"`
	Admin      adminProvisioner
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.AdminEmail != "" {
				if err := p.Admin.EnsureAdmin(ctx, p.Config.AdminEmail, p.Config.AdminPassword); err != nil {
					return err
				}
			}

			p.Logger.Info("starting storefront", slog.String("addr", p.Server.Addr))
			p.Dispatcher.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}

			p.Dispatcher.Stop()
			if p.Publisher != nil {
				if cerr := p.Publisher.Close(); cerr != nil {
					p.Logger.Warn("close event publisher", slog.String("error", cerr.Error()))
				}
			}
			if err != nil {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
