package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurante-api/internal/logger"
	"restaurante-api/internal/messaging"
	"restaurante-api/internal/models"
)

// Subscriber consumes order lifecycle events from the notifications queue
// and prints them in a human-readable form.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, logger *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   logger,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start starts the notification subscriber and blocks until the consumer
// stops or a shutdown signal arrives.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleEvent); err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.gracefulShutdown(requestID)
	case <-s.done:
		return nil
	}
}

// handleEvent processes one order lifecycle event.
func (s *Subscriber) handleEvent(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var event models.OrderEventMessage
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse order event", requestID, err, nil)
		return fmt.Errorf("failed to parse order event: %w", err)
	}

	s.logger.Debug("event_received", "Received order event", requestID, map[string]interface{}{
		"order_id":   event.OrderID,
		"new_status": event.NewStatus,
		"changed_by": event.ChangedBy,
	})

	fmt.Println(s.formatEvent(&event))

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"order_id":   event.OrderID,
		"old_status": event.OldStatus,
		"new_status": event.NewStatus,
		"changed_by": event.ChangedBy,
		"timestamp":  event.Timestamp.Format("2006-01-02 15:04:05"),
	})

	return nil
}

// formatEvent creates a human-readable line for one event.
func (s *Subscriber) formatEvent(event *models.OrderEventMessage) string {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")

	switch models.OrderStatus(event.NewStatus) {
	case models.StatusPending:
		if event.OldStatus == "" {
			return fmt.Sprintf(
				"🧾 [%s] Order %d placed by user %d. Total: R$ %s.",
				timestamp, event.OrderID, event.UserID, event.Total.StringFixed(2),
			)
		}
		return fmt.Sprintf(
			"📋 [%s] Order %d is pending again.",
			timestamp, event.OrderID,
		)
	case models.StatusPreparing:
		return fmt.Sprintf(
			"🍳 [%s] Order %d is now being prepared.",
			timestamp, event.OrderID,
		)
	case models.StatusDelivered:
		return fmt.Sprintf(
			"🎉 [%s] Order %d has been delivered! Thank you for your business.",
			timestamp, event.OrderID,
		)
	case models.StatusCancelled:
		return fmt.Sprintf(
			"❌ [%s] Order %d has been cancelled by %s.",
			timestamp, event.OrderID, event.ChangedBy,
		)
	default:
		return fmt.Sprintf(
			"📋 [%s] Order %d status changed from '%s' to '%s' by %s.",
			timestamp, event.OrderID, event.OldStatus, event.NewStatus, event.ChangedBy,
		)
	}
}

// gracefulShutdown closes the consumer.
func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if s.consumer != nil {
		s.consumer.Close()
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
