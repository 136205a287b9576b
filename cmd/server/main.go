package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/playlink/llm-server/internal/ai"
	"github.com/playlink/llm-server/internal/chat"
	"github.com/playlink/llm-server/internal/config"
	"github.com/playlink/llm-server/internal/db"
	"github.com/playlink/llm-server/internal/httpapi"
	"github.com/playlink/llm-server/internal/httpapi/handlers"
	"github.com/playlink/llm-server/internal/integration"
	"github.com/playlink/llm-server/internal/steam"
	"github.com/playlink/llm-server/internal/store/rabbitmq"
	"github.com/playlink/llm-server/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Open(cfg.SQLiteDSN)

	// Provider registry (routed by catalog model lookup)
	reg := ai.NewRegistry()
	reg.Register(ai.ProviderOllama, func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register(ai.ProviderHuggingFace, func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.HuggingFaceModel
		}
		return ai.NewHuggingFaceProvider(cfg.HuggingFaceBase, cfg.HuggingFaceToken, m), nil
	})

	chatSvc := chat.NewService(chat.NewRepo(gdb), reg, ai.DefaultCatalog(), cfg.ChatContextWindowSize)
	integrationSvc := integration.NewService(integration.NewRepo(gdb))
	steamClient := steam.NewClient(cfg.SteamBaseURL, cfg.SteamAPIKey)

	var cache *redisstore.Store
	if cfg.RedisAddr != "" {
		cache = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer cache.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// async chat jobs are optional: a missing broker only disables the
	// async endpoint
	var jobs *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbit unavailable, async chat disabled: %v", err)
		} else {
			defer pub.Close()

			consumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.RabbitQueue)
			if err != nil {
				log.Printf("rabbit consumer unavailable, async chat disabled: %v", err)
			} else {
				defer consumer.Close()
				jobs = pub
				go func() {
					if err := consumer.Run(ctx, chatSvc.ProcessJob); err != nil {
						log.Printf("job consumer stopped: %v", err)
					}
				}()
			}
		}
	}

	h := handlers.NewHandler(chatSvc, integrationSvc, steamClient, cache, jobs)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(h),
	}

	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
