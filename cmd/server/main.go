package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/config"
	"github.com/crafthaus/shop-api/internal/es"
	"github.com/crafthaus/shop-api/internal/events"
	"github.com/crafthaus/shop-api/internal/httpserver"
	"github.com/crafthaus/shop-api/internal/logging"
	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
	loggingmw "github.com/crafthaus/shop-api/internal/middleware/logging"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/service/admin"
	authsvc "github.com/crafthaus/shop-api/internal/service/auth"
	cartsvc "github.com/crafthaus/shop-api/internal/service/cart"
	"github.com/crafthaus/shop-api/internal/service/catalog"
	"github.com/crafthaus/shop-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg.MustSecrets()

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	r := repo.New(db)

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		pub = producer
	}

	var searchIndex catalog.SearchIndex
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(es.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchIndex = es.NewProductIndex(esClient, cfg.ESIndex)
	}

	var blobs storage.BlobStore
	if cfg.S3Bucket != "" {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		blobs, err = storage.NewS3Store(initCtx, cfg.S3Bucket, cfg.AWSRegion)
		cancel()
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
	}

	authService := &authsvc.Service{
		Repo:          r,
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		Events:        pub,
	}
	cartService := cartsvc.NewService(r, pub)
	catalogService := &catalog.Service{
		Repo:   r,
		Blobs:  blobs,
		Search: searchIndex,
		Events: pub,
	}
	adminService := &admin.Service{Repo: r}

	gate := mwauth.New(authService)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:        &httpserver.AuthHTTP{Svc: authService, Repo: r},
		Cart:        &httpserver.CartHTTP{Svc: cartService},
		Products:    &httpserver.ProductHTTP{Svc: catalogService},
		Collections: &httpserver.CollectionHTTP{Svc: catalogService},
		Admin:       &httpserver.AdminHTTP{Svc: adminService},
		Gate:        gate,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
