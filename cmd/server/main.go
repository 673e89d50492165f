package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akenozll/restoransiparis2/internal/bus"
	"github.com/akenozll/restoransiparis2/internal/config"
	"github.com/akenozll/restoransiparis2/internal/engine"
	"github.com/akenozll/restoransiparis2/internal/httpx"
	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/akenozll/restoransiparis2/internal/persist"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// persistence
	var store persist.Store
	switch cfg.PersistDriver {
	case "file":
		store = persist.NewFile(cfg.DataFile)
	case "postgres":
		pg, err := persist.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	case "none":
	default:
		log.Fatalf("unknown PERSIST_DRIVER %q", cfg.PersistDriver)
	}

	var state *persist.State
	var writer *persist.Writer
	if store != nil {
		st, err := store.Load(ctx)
		if err != nil {
			// in-memory state is authoritative; a broken snapshot only
			// costs history, not uptime
			log.Printf("load snapshot: %v (starting fresh)", err)
		}
		state = st
		writer = persist.NewWriter(store)
	}
	if state == nil {
		state = engine.DefaultState()
	}

	// event bus: in-process hub always, kafka/redis when configured
	hub := bus.NewHub(64)
	b := bus.New(cfg.ServiceName, hub)

	var kafkaSink *bus.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = bus.NewKafkaSink(cfg.KafkaBrokers, orders.TopicEvents, 1024)
		kafkaSink.Start(ctx)
		b.Attach(kafkaSink)
	}
	var redisSink *bus.RedisSink
	if cfg.RedisAddr != "" {
		redisSink = bus.NewRedisSink(cfg.RedisAddr, cfg.RedisChannel, 1024)
		redisSink.Start(ctx)
		b.Attach(redisSink)
	}

	eng := engine.New(b, hub, writer, state)

	router := httpx.NewRouter()
	h := &httpx.Handler{Engine: eng, AdminToken: cfg.AdminToken}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	if kafkaSink != nil {
		kafkaSink.Close()
	}
	if redisSink != nil {
		redisSink.Close()
	}
	cancel()
	if kafkaSink != nil {
		kafkaSink.WaitClosed()
	}
	if redisSink != nil {
		redisSink.WaitClosed()
	}
	if writer != nil {
		writer.Close()
	}
}
