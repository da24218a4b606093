package main

import (
	"flag"
	"os"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/migration"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "up | down | steps | version | force")
	n := flag.Int("n", 0, "pasos para steps o versión para force")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	m, err := migration.New(cfg.DB.ConnectionString(), log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo crear el migrador")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar migrador")
		}
	}()

	switch *cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*n)
	case "force":
		err = m.Force(*n)
	case "version":
		var v uint
		var dirty bool
		v, dirty, err = m.Version()
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión actual")
		}
	default:
		log.Error().Str("cmd", *cmd).Msg("comando desconocido")
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		os.Exit(1)
	}
}
