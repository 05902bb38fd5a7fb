package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"bravo-deck-backend/internal/deck"
	"bravo-deck-backend/internal/driver"
	"bravo-deck-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	state   *deck.DeckState
	sim     *driver.Simulator
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(state *deck.DeckState, sim *driver.Simulator, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		state:   state,
		sim:     sim,
		store:   s,
		webpush: webpushOptions,
	}
}
