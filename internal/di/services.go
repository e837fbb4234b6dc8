package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/auth"
	"github.com/shubhams167/aura/internal/clients"
	"github.com/shubhams167/aura/internal/clients/groww"
	"github.com/shubhams167/aura/internal/config"
	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/metrics"
	"github.com/shubhams167/aura/internal/modules/brokers"
	"github.com/shubhams167/aura/internal/modules/profiles"
	"github.com/shubhams167/aura/internal/vault"
)

// InitializeServices creates the cipher, broker clients and services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Fails here, at startup, when the passphrase or salt is missing
	cipher, err := vault.New(cfg.EncryptionKey, cfg.EncryptionSalt)
	if err != nil {
		return fmt.Errorf("failed to initialize credential cipher: %w", err)
	}
	container.Cipher = cipher

	if container.Metrics == nil {
		container.Metrics = metrics.New()
	}

	// Broker clients; Upstox and Zerodha stay registered as unavailable
	container.BrokerRegistry = clients.NewRegistry()
	container.BrokerRegistry.Register(domain.BrokerGroww, groww.NewGrowwBrokerAdapter(log,
		groww.WithBaseURL(cfg.GrowwAPIBase),
		groww.WithTimeout(cfg.BrokerTimeout),
		groww.WithMetrics(container.Metrics),
	))

	container.ProfileService = profiles.NewService(container.ProfileStore, log)
	container.BrokerService = brokers.NewService(
		auth.ContextResolver{},
		container.CredentialStore,
		container.Cipher,
		container.BrokerRegistry,
		container.Metrics,
		log,
	)

	return nil
}
