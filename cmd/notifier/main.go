package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/akenozll/restoransiparis2/internal/alerts"
	"github.com/akenozll/restoransiparis2/internal/bus"
	"github.com/akenozll/restoransiparis2/internal/config"
	"github.com/akenozll/restoransiparis2/internal/orders"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		i, _ = strconv.Atoi(def)
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the notifier")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := alerts.NewWatcher()

	group := getenv("NOTIFIER_GROUP", "stock-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cons := bus.NewConsumer(cfg.KafkaBrokers, group, orders.TopicEvents, workers)

	go func() {
		log.Printf("notifier started: group=%s topic=%s workers=%d", group, orders.TopicEvents, workers)
		if err := cons.Start(ctx, watcher.HandleEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down notifier...")
	cancel()
}
