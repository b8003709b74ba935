// Command wardragon-aggregator polls one or more WarDragon kits over HTTP,
// upserts their drone, signal, and health telemetry into TimescaleDB, and
// serves the resulting history and pattern-detection queries over a REST
// API. See internal/config for the environment variables that configure it.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"

	"github.com/lukeswitz/wardragon-analytics/internal/config"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
	"github.com/lukeswitz/wardragon-analytics/pkg/nats"
	"github.com/lukeswitz/wardragon-analytics/pkg/runtimeEnv"
)

func main() {
	cliInit()

	log.SetLogLevel(flagLogLevel)
	log.SetLogDateTime(flagLogDateTime)

	// See https://github.com/google/gops (runtime overhead is almost zero)
	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := config.Init(flagEnvFile); err != nil {
		log.Fatalf("loading configuration: %s", err.Error())
	}
	if flagKitsOverride != "" {
		config.Keys.KitsConfig = flagKitsOverride
	}

	if err := nats.Init(config.Keys.NATS); err != nil {
		log.Fatalf("initializing NATS config: %s", err.Error())
	}
	nats.Connect()

	if err := serverInit(); err != nil {
		log.Fatalf("initialization failed: %s", err.Error())
	}

	if flagMigrateDB {
		return
	}

	go func() {
		if err := serverStart(); err != nil {
			log.Fatalf("server failed: %s", err.Error())
		}
	}()

	runtimeEnv.SystemdNotifiy(true, "running")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	runtimeEnv.SystemdNotifiy(false, "shutting down")
	serverShutdown()
	log.Print("Graceful shutdown completed!")
}
