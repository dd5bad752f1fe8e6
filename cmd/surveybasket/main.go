package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/surveybasket/internal/auth/app"
)

func main() {
	cfg := app.LoadConfig()

	flagSet := pflag.NewFlagSet("surveybasket", pflag.ContinueOnError)
	flagSet.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port (env PORT)")
	flagSet.StringVar(&cfg.SeedFile, "seed-file", cfg.SeedFile, "YAML role definitions used by bootstrap (env AUTH_SEED_FILE)")
	flagSet.BoolVar(&cfg.MigrateOnly, "migrate-only", cfg.MigrateOnly, "apply database migrations and exit")
	version := flagSet.Bool("version", false, "print the build version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}
	if *version {
		fmt.Println(app.BuildVersion)
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
