// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"net/http"

	"screenshot_backend/internal/feature/auth/adapters/google"
	"screenshot_backend/internal/feature/auth/usecase"
	"screenshot_backend/internal/platform/events"
)

// NewIdentityVerifier creates the Google ID token verifier.
// If no client ID is configured, or the validator cannot be built, it falls back to google.Disabled.
func NewIdentityVerifier(ctx context.Context, clientID string, httpClient *http.Client) usecase.IdentityVerifier {
	if clientID == "" {
		slog.Warn("GOOGLE_CLIENT_ID is not set. Google sign-in is disabled.")
		return google.Disabled{}
	}
	v, err := google.NewTokenVerifier(ctx, clientID, httpClient)
	if err != nil {
		slog.Error("failed to create google token verifier. Google sign-in is disabled.", "error", err)
		return google.Disabled{}
	}
	return v
}

// NewEventPublisher creates the account event publisher.
// If Kafka is not configured, the returned publisher skips every event.
func NewEventPublisher(broker, topic string) *events.KafkaPublisher {
	p := events.NewKafkaPublisher(broker, topic)
	if !p.Enabled() {
		slog.Warn("KAFKA_BROKER is not set. Account events are not published.")
	}
	return p
}
