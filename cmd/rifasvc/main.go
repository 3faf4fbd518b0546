package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/rifanet/rifa-services/configs"
	mongodb "github.com/rifanet/rifa-services/internal/db"
	natscli "github.com/rifanet/rifa-services/internal/nats"
	"github.com/rifanet/rifa-services/internal/rifasvc/archive"
	"github.com/rifanet/rifa-services/internal/rifasvc/broker"
	"github.com/rifanet/rifa-services/internal/rifasvc/db"
	handlers "github.com/rifanet/rifa-services/internal/rifasvc/handlers"
	"github.com/rifanet/rifa-services/internal/rifasvc/service"
	"github.com/rifanet/rifa-services/internal/rifasvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "rifa"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// pg connection
	dbpool, err := db.Connect(cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	gameStore := store.NewGameStore(dbpool)
	gameService := service.NewGameService(gameStore)

	purchaseStore := store.NewPurchaseStore(dbpool)
	revealStore := store.NewRevealStore(dbpool)

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	eventBroker := broker.NewBroker(n.Conn)

	// receipt archive is optional: without Mongo the service runs,
	// purchases just leave no back-office receipts
	var receipts service.ReceiptArchiver
	if cfg.MongoURI != "" {
		mongo, cancelMongo, err := mongodb.ConnectToDB(cfg.MongoURI)
		if err != nil {
			log.Errorf("Error: unable to connect to Mongo, receipts disabled %v", err)
		} else {
			defer cancelMongo()
			receipts = archive.NewReceiptArchive(mongo)
			log.Printf("mongo connection established successfully")
		}
	}

	purchaseService := service.NewPurchaseService(gameService, purchaseStore, eventBroker, receipts)
	revealService := service.NewRevealService(revealStore, eventBroker)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from purchase-burst abuse
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gameService, purchaseService, revealService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.ServicePort,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
