package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civitasrp/civitas/src/api/webserver"
	"github.com/civitasrp/civitas/src/bot"
	"github.com/civitasrp/civitas/src/config"
	shareddata "github.com/civitasrp/civitas/src/data"
	"github.com/civitasrp/civitas/src/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.MySQLDSN == "" {
		log.Fatalf("config: MYSQL_DSN is required")
	}

	// One DB connection for bot and API; migration runs at startup.
	db := shareddata.MustMySQL(cfg.MySQLDSN)

	if err := cfg.FillFromSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	rdb := shareddata.MustRedis(cfg.RedisURL)
	st := store.NewMySQL(db)

	b, err := bot.New(bot.Config{Token: cfg.DiscordToken, DB: db, Redis: rdb}, st)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("bot start: %v", err)
	}

	router := webserver.New(webserver.Deps{
		Token:      cfg.APIToken,
		Identities: st.Identities(),
		Warnings:   st.Warnings(),
		Configs:    st.Configs(),
	})
	httpSrv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("API listening on port %s", cfg.APIPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Println("Civitas is running. Press Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
	b.Stop()
}
