package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	tg := NewTelegramClient(cfg.TelegramBotToken)
	pipeline := NewPipeline(cfg, db, tg, NewClassifier(cfg))

	if sched := StartDailySummary(cfg, db, tg); sched != nil {
		defer sched.Stop()
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		close(stop)
	}()

	log.Println("Starting Work Intake Bot...")
	if err := RunBot(db, tg, pipeline, stop); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
