package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"pallet-cubing-backend/config"
	"pallet-cubing-backend/internal/mw"
	"pallet-cubing-backend/internal/store"
	"pallet-cubing-backend/internal/workflow"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, wf *workflow.Controller, subs store.SubscriptionStore, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(wf, subs, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateBurst)

	// Only static responses are cached; workflow state changes on every call.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rules", caching, GetRules)

		api.GET("/session", handler.GetSession)
		api.POST("/login", handler.Login)
		api.POST("/signout", handler.SignOut)

		api.POST("/trailer", handler.EnterTrailer)
		api.POST("/trailer/cancel", handler.CancelTrailer)

		api.POST("/pro", handler.StartPro)
		api.POST("/pro/continue", handler.ContinuePro)
		api.POST("/pro/restart", handler.RestartPro)
		api.POST("/pro/discard", handler.DiscardPro)
		api.POST("/scan", handler.Scan)

		api.GET("/pallets/progress", handler.GetProgress)
		api.POST("/pallets", handler.SavePallet)
		api.POST("/pallets/abandon", handler.AbandonPro)
		api.POST("/pallets/back", handler.BackFromPallets)

		api.GET("/trailers/:trailer/summary", handler.GetSummary)
		api.POST("/trailers/:trailer/next-pro", handler.NextPro)
		api.POST("/trailers/:trailer/export", handler.ExportTrailer)
		api.POST("/trailers/:trailer/delete", handler.DeleteTrailer)
		api.GET("/exports/:id", handler.GetExport)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
