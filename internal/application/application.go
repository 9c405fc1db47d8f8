package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/topup-desk/support-service/internal/config"
	"github.com/topup-desk/support-service/internal/database"
	"github.com/topup-desk/support-service/internal/handler"
	"github.com/topup-desk/support-service/internal/kafka"
	"github.com/topup-desk/support-service/internal/media"
	"github.com/topup-desk/support-service/internal/router"
	"github.com/topup-desk/support-service/internal/service"
	"github.com/topup-desk/support-service/internal/telegram"
)

// API приложение: HTTP сервер (режим api).
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	producer *kafka.Producer
}

// NewAPI создаёт приложение для режима api.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	ticketSvc := service.NewTicketService(db)
	chatSvc := service.NewChatService(db)
	visitorSvc := service.NewVisitorService(db)

	notifier := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	var storage media.Storage
	uploadDir := ""
	if cfg.CloudinaryURL != "" {
		storage, err = media.NewCloudinaryStorage(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("media: %w", err)
		}
	} else {
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:" + cfg.HTTPPort
		}
		storage, err = media.NewLocalStorage(cfg.UploadDir, baseURL)
		if err != nil {
			return nil, fmt.Errorf("media: %w", err)
		}
		uploadDir = cfg.UploadDir
	}

	mux := router.New(router.Deps{
		Chat:       handler.NewChatHandler(chatSvc, ticketSvc, notifier, producer),
		Ticket:     handler.NewTicketHandler(ticketSvc, notifier, producer),
		Media:      handler.NewMediaHandler(storage),
		Visitor:    handler.NewVisitorHandler(visitorSvc),
		AdminToken: cfg.AdminToken,
		UploadDir:  uploadDir,
		Limiter:    handler.NewRateLimiter(60, 20),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run запускает HTTP сервер, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Swagger spec:  %s/swagger/openapi.json", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  API v1:        %s/api/v1/", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
	return nil
}
