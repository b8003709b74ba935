package main

import "flag"

var (
	flagGops         bool
	flagMigrateDB    bool
	flagLogDateTime  bool
	flagEnvFile      string
	flagKitsOverride string
	flagLogLevel     string
)

func cliInit() {
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.BoolVar(&flagMigrateDB, "migrate-db", false, "Apply pending database migrations and exit")
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to the `.env` file read for configuration")
	flag.StringVar(&flagKitsOverride, "kits", "", "Override KITS_CONFIG with this `path`")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "Sets the logging level: `[debug, info, warn, err, crit]`")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Set this flag to add date and time to log messages")
	flag.Parse()
}
