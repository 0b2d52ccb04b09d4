package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lorekeep/iris/src/iris/bot"
	"github.com/lorekeep/iris/src/iris/config"
	"github.com/lorekeep/iris/src/iris/data"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	var db *gorm.DB
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db = data.MustMySQL(dsn)
	} else {
		log.Println("MYSQL_DSN not set; running without settings table and reply log")
	}

	cfg := config.Load(db)

	if cfg.Token == "" {
		log.Fatal("DISCORD_TOKEN not set in database or environment")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Printf("[Iris] v%s startup: watching %d configured channels", bot.Version, len(cfg.ChannelIDs))
	b.Start()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
	log.Println("Iris stopped gracefully")
}
