package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dns-manager-backend/external_resource/cloudflare"
	"dns-manager-backend/external_resource/route53"
	"dns-manager-backend/external_resource/telegram"
	"dns-manager-backend/internal/repository"
	"dns-manager-backend/internal/usecase"
	"dns-manager-backend/pkg/auth"
	"dns-manager-backend/pkg/config"
	"dns-manager-backend/pkg/storage"
)

// App holds the use cases shared by every entrypoint
type App struct {
	DNS     usecase.DNSUsecase
	Imports usecase.ImportUsecase
	Auth    usecase.AuthUsecase

	store storage.Storage
}

// New wires storage, the DNS provider and the use cases from cfg
func New(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*App, error) {
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, cfg, lg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	notifier, err := newNotifier(cfg, lg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	records := repository.NewDNSRepository(store)
	users := repository.NewUserRepository(store)
	zones := usecase.NewZoneResolver(provider, lg)

	return &App{
		DNS:     usecase.NewDNSUsecase(provider, records, zones, notifier, cfg.DefaultTTL, lg),
		Imports: usecase.NewImportUsecase(provider, records, zones, notifier, cfg.ImportConcurrency, cfg.DefaultTTL, lg),
		Auth:    usecase.NewAuthUsecase(users, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), lg),
		store:   store,
	}, nil
}

// Close releases the store
func (a *App) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StoreBackend {
	case config.StoreJSON:
		return storage.NewJSONStorage(cfg.DataDir), nil
	case config.StoreMongo:
		store, err := storage.NewMongoStorage(ctx, cfg.AtlasURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newProvider(ctx context.Context, cfg *config.Config, lg *zap.Logger) (repository.DNSProviderRepository, error) {
	switch cfg.DNSProvider {
	case config.ProviderRoute53:
		client, err := route53.NewClient(ctx, lg, route53.Config{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Route 53 client: %w", err)
		}
		return repository.NewRoute53ProviderRepository(client), nil
	case config.ProviderCloudflare:
		client, err := cloudflare.NewClient(lg, cloudflare.Config{
			APIToken:  cfg.CloudflareAPIToken,
			APIKey:    cfg.CloudflareAPIKey,
			Email:     cfg.CloudflareEmail,
			AccountID: cfg.CloudflareAccountID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
		}
		return repository.NewCloudflareProviderRepository(client, lg), nil
	}
	return nil, fmt.Errorf("unknown DNS provider %q", cfg.DNSProvider)
}

// newNotifier always logs drift and also alerts Telegram chats when configured
func newNotifier(cfg *config.Config, lg *zap.Logger) (usecase.DriftNotifier, error) {
	logNotifier := usecase.NewLogNotifier(lg)
	if !cfg.AlertsEnabled() {
		return logNotifier, nil
	}
	sender, err := telegram.NewSender(cfg.TelegramBotToken, cfg.TelegramAlertChatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram sender: %w", err)
	}
	return usecase.NewMultiNotifier(logNotifier, usecase.NewTelegramNotifier(sender, lg)), nil
}
