package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	config "github.com/rifanet/rifa-services/configs"
	"github.com/rifanet/rifa-services/internal/comm"
	natscli "github.com/rifanet/rifa-services/internal/nats"
	"github.com/rifanet/rifa-services/internal/notifysvc/routes"
	"github.com/rifanet/rifa-services/internal/notifysvc/ws"
)

const SERVICE_NAME = "notify"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg, err := config.LoadNotify(context.Background())
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Connect to NATS
	n, err := natscli.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	hub := ws.NewHub()

	// fan game events out to the sockets watching each game
	sub, err := n.Conn.Subscribe(comm.EventsTopic, func(m *nats.Msg) {
		var event comm.EventMessage
		if err := json.Unmarshal(m.Data, &event); err != nil {
			log.Errorf("discarding malformed event: %v", err)
			return
		}
		hub.Broadcast(event)
	})
	if err != nil {
		log.Fatalf("unable to subscribe to %s: %v", comm.EventsTopic, err)
	}
	defer sub.Unsubscribe()

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(c.Handler)
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	routes.SetRoutes(r, hub)

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
