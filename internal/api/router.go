package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bravo-deck-backend/config"
	"bravo-deck-backend/internal/deck"
	"bravo-deck-backend/internal/driver"
	"bravo-deck-backend/internal/mw"
	"bravo-deck-backend/internal/store"
	"bravo-deck-backend/internal/visualizer"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(state *deck.DeckState, sim *driver.Simulator, s store.Store, hub *visualizer.Hub, webpushOptions *webpush.Options, serverCfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(state, sim, s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(serverCfg.RateLimitPerSec), 5, serverCfg.RequestIPHeader)

	cacheTTL := time.Duration(serverCfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Deck snapshots. Summaries change on every pipetting step, so the
		// cache TTL stays short.
		api.GET("/deck", caching, handler.GetDeckSummary)
		api.GET("/deck/export", handler.ExportDeckState)
		api.POST("/deck/reset", handler.ResetDeck)

		api.GET("/nests", handler.GetNests)
		api.GET("/nests/:nest_id", handler.GetNest)
		api.GET("/operations", handler.GetActiveOperations)

		// Direct state mutations, used by external schedulers that track
		// deck state without going through the driver.
		api.PUT("/nests/:nest_id/labware", handler.PutNestLabware)
		api.POST("/nests/:nest_id/operations", handler.StartOperation)
		api.POST("/nests/:nest_id/operations/complete", handler.CompleteOperation)
		api.POST("/nests/:nest_id/progress", handler.UpdateProgress)
		api.POST("/nests/:nest_id/volume", handler.UpdateVolume)
		api.POST("/nests/:nest_id/tips", handler.UpdateTips)

		// Driver commands.
		driverGroup := api.Group("/driver")
		{
			driverGroup.POST("/connect", handler.DriverConnect)
			driverGroup.POST("/disconnect", handler.DriverDisconnect)
			driverGroup.POST("/aspirate", handler.DriverAspirate)
			driverGroup.POST("/dispense", handler.DriverDispense)
			driverGroup.POST("/mix", handler.DriverMix)
			driverGroup.POST("/wash", handler.DriverWash)
			driverGroup.POST("/tips_on", handler.DriverTipsOn)
			driverGroup.POST("/tips_off", handler.DriverTipsOff)
			driverGroup.POST("/move", handler.DriverMove)
			driverGroup.POST("/pick_and_place", handler.DriverPickAndPlace)
		}

		// Labware catalog.
		api.GET("/labware", caching, handler.ListLabware)
		api.GET("/labware/:name", handler.GetLabware)
		api.PUT("/labware", handler.UpsertLabware)
		api.DELETE("/labware/:name", handler.DeleteLabware)
		api.POST("/labware/:name/clone", handler.CloneLabware)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	if hub != nil {
		r.GET("/ws", visualizer.ServeWS(hub))
	}

	return r
}
