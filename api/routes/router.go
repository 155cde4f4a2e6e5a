package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umarxon/delivera-backend/api/controllers"
	opscontrollers "github.com/umarxon/delivera-backend/api/controllers/ops"
	webhookcontrollers "github.com/umarxon/delivera-backend/api/controllers/webhooks"
	"github.com/umarxon/delivera-backend/api/middleware"
	"github.com/umarxon/delivera-backend/internal/integrity"
	"github.com/umarxon/delivera-backend/internal/ledger"
	"github.com/umarxon/delivera-backend/internal/notifications"
	"github.com/umarxon/delivera-backend/internal/returns"
	"github.com/umarxon/delivera-backend/internal/sync"
	"github.com/umarxon/delivera-backend/pkg/config"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Pinger matches the health-check surface of the backing clients.
type Pinger = controllers.HealthPinger

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    Pinger
	RedisPinger Pinger

	SyncService          sync.Service
	ReturnsService       returns.Service
	LedgerService        ledger.Service
	IntegrityService     integrity.Service
	NotificationsService notifications.Service
	WebhookService       webhookcontrollers.DeliveryWebhookService
}

// NewRouter builds the chi router for the API binary.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.HealthPinger{
			"database": params.DBPinger,
			"redis":    params.RedisPinger,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/delivery", webhookcontrollers.DeliveryWebhook(params.WebhookService, cfg.Webhook, logg))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", controllers.NotificationsList(params.NotificationsService, logg))
		r.Post("/read-all", controllers.NotificationsMarkAllRead(params.NotificationsService, logg))
		r.Post("/{notificationID}/read", controllers.NotificationsMarkRead(params.NotificationsService, logg))
	})

	r.Route("/api/v1/ops", func(r chi.Router) {
		r.Use(middleware.SharedSecret(cfg.Ops.Secret, logg))

		r.Post("/orders/{orderID}/reconcile", opscontrollers.ReconcileOrder(params.SyncService, logg))
		r.Post("/returns", opscontrollers.ResolveReturn(params.ReturnsService, logg))
		r.Get("/integrity/report", opscontrollers.IntegrityReport(params.IntegrityService, logg))
		r.Post("/integrity/repair", opscontrollers.IntegrityRepair(params.IntegrityService, logg))
		r.Post("/expenses", opscontrollers.ApplyExpense(params.LedgerService, logg))
		r.Post("/expenses/{expenseID}/reverse", opscontrollers.ReverseExpense(params.LedgerService, logg))
	})

	return r
}
