package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/ComptaPME/compta_backend/internal/core/ports/services"
	"github.com/ComptaPME/compta_backend/internal/middleware"
	"github.com/ComptaPME/compta_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service facades.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	journalService portssvc.JournalSvcFacade,
	limiterInstance *limiter.Limiter,
) {
	r.GET("/health", getHealth)

	setupAPIV1Routes(r, cfg, journalService, limiterInstance)
}

func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	journalService portssvc.JournalSvcFacade,
	limiterInstance *limiter.Limiter,
) {
	v1 := r.Group("/api/v1",
		cors.New(corsConfig(cfg)),
		middleware.RateLimit(limiterInstance),
	)

	RegisterTransactionRoutes(v1, journalService)
	RegisterJournalRoutes(v1, journalService)
}

// RegisterTransactionRoutes mounts the transaction intake endpoint.
func RegisterTransactionRoutes(v1 *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	handler := newTransactionHandler(journalService)

	transactions := v1.Group("/transactions")
	transactions.POST("", handler.createTransaction)
}

// RegisterJournalRoutes mounts the journal consultation and entry
// lifecycle endpoints.
func RegisterJournalRoutes(v1 *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	handler := newJournalHandler(journalService)

	journals := v1.Group("/journals")
	{
		journals.GET("", handler.listJournals)
		journals.GET("/:journalType/entries", handler.listEntries)
		journals.GET("/:journalType/balance", handler.getBalance)
		journals.GET("/:journalType/export", handler.exportEntries)
	}

	entries := v1.Group("/entries")
	{
		entries.GET("/:entryID", handler.getEntry)
		entries.POST("/:entryID/validate", handler.validateEntry)
		entries.POST("/:entryID/lock", handler.lockEntry)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return corsCfg
}
