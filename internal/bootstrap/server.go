package bootstrap

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgxpool"

	drillapp "github.com/blunderfixer/blunderfixer/internal/application/drill"
	syncapp "github.com/blunderfixer/blunderfixer/internal/application/sync"
	"github.com/blunderfixer/blunderfixer/internal/infrastructure/repository"
	httpecho "github.com/blunderfixer/blunderfixer/internal/interfaces/http/echo"
)

// NewHTTPServer wires repositories, use cases and handlers into the echo
// server.
func NewHTTPServer(db *gorm.DB, pool *pgxpool.Pool, log zerolog.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("1M"))

	jobRepo := repository.NewSyncJobRepository(pool)
	rosterRepo := repository.NewActiveUserRepository(db)
	drillRepo := repository.NewDrillRepository(db)

	syncHandler := httpecho.NewSyncHandler(
		syncapp.NewEnqueueUserSync(jobRepo, rosterRepo),
		syncapp.NewEnqueueAllSync(jobRepo, rosterRepo, log),
		syncapp.NewGetSyncJob(jobRepo),
	)
	drillHandler := httpecho.NewDrillHandler(
		drillapp.NewListDrills(drillRepo),
		drillapp.NewRecentDrills(drillRepo),
		drillapp.NewMasteredDrills(drillRepo),
		drillapp.NewGetDrill(drillRepo),
		drillapp.NewReadDrillHistory(drillRepo),
		drillapp.NewRecordHistory(drillRepo),
		drillapp.NewUpdateDrill(drillRepo),
	)

	httpecho.RegisterRoutes(server, syncHandler, drillHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return server
}
