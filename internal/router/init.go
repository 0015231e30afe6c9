package router

import (
	"context"

	"github.com/oksasatya/edugrant/internal/container"
	handlers "github.com/oksasatya/edugrant/internal/interface/http"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
	"github.com/oksasatya/edugrant/internal/router/modules"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

// healthChecks probes whichever backing services are configured.
func healthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb) }
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = res.Body.Close() }()
			if res.IsError() {
				return &esStatusError{status: res.Status()}
			}
			return nil
		}
	}
	return checks
}

type esStatusError struct{ status string }

func (e *esStatusError) Error() string { return "elasticsearch: " + e.status }

// InitModules builds the handlers from the container's services and registers every module.
// It must run after container.SetServices.
func InitModules(r *Registry) {
	svc := container.GetServices()
	cookies := container.GetCookies()
	logger := container.GetLogger()
	auth := middleware.Auth(svc.Auth, cookies)

	r.Add(
		modules.NewHealthModule(handlers.NewHealthHandler(healthChecks(), logger)),
		modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, cookies, logger), auth),
		modules.NewScholarshipModule(handlers.NewScholarshipHandler(svc.Scholarships, svc.Applications), auth),
		modules.NewApplicationModule(handlers.NewApplicationHandler(svc.Applications), auth),
		modules.NewNotificationModule(handlers.NewNotificationHandler(svc.Notifications), auth),
		modules.NewAssistantModule(handlers.NewAssistantHandler(svc.Assistant)),
	)
	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
