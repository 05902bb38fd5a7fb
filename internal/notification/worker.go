package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"bravo-deck-backend/internal/deck"
	"bravo-deck-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Alert is one deck error to fan out to subscribers.
type Alert struct {
	NestID  int
	Message string
}

// WorkerPool fans deck error alerts out to every stored push subscription.
// It is registered as a deck listener; dispatch is non-blocking so a slow
// push service can never stall a deck mutation.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new alert worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			wp.sendAlerts(ctx, alert)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// HandleDeckEvent implements deck.Listener. Only error events become alerts.
func (wp *WorkerPool) HandleDeckEvent(ev deck.Event) {
	if ev.Kind != deck.EventErrorLogged {
		return
	}
	wp.Dispatch(Alert{NestID: ev.NestID, Message: ev.Message})
}

// Dispatch queues an alert, dropping it if the queue is full.
func (wp *WorkerPool) Dispatch(alert Alert) {
	select {
	case wp.jobs <- alert:
	default:
		log.Printf("Warning: alert queue full, dropping alert: %s", alert.Message)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

func (wp *WorkerPool) sendAlerts(ctx context.Context, alert Alert) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching push subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var message string
	if alert.NestID > 0 {
		message = fmt.Sprintf("Deck error at nest %d: %s", alert.NestID, alert.Message)
	} else {
		message = fmt.Sprintf("Deck error: %s", alert.Message)
	}

	log.Printf("Sending %d alerts for deck error", len(subscriptions))
	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are pruned on the spot.
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
