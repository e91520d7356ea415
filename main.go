package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/lowpolygames/skirmish-server/app"
	"github.com/lowpolygames/skirmish-server/errors"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()
	config, err := app.ParseConfigFromFile(*configPath)
	if err != nil {
		log.Fatalf("parse config: %s", errors.Prettify(err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.NewApp(config).Boot(ctx); err != nil {
		log.Fatalf("boot: %s", errors.Prettify(err))
	}
}
