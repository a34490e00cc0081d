package main

import (
	"errors"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"CrediScan/internal/di"
	"CrediScan/pkg/config"
)

type options struct {
	Config  string   `short:"c" long:"config" env:"CREDISCAN_CONFIG" default:"config/config.yaml" description:"config file path"`
	EnvFile []string `long:"env-file" description:"dotenv file(s) loaded before the config (default .env)"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(opts.Config, opts.EnvFile...)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
