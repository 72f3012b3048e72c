package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/ansvik/bankgo"
	"github.com/bwmarrin/snowflake"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/yaml.v3"

	"github.com/rs/zerolog"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg bankgo.Config
	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}
	cfgfl.Close()

	node, err := snowflake.NewNode(cfg.Snowflake.Node)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating snowflake node")
	}
	defaults, err := cfg.PolicyDefaults()
	if err != nil {
		logger.Fatal().Err(err).Msg("error parsing account policy defaults")
	}

	bank := bankgo.NewBank(node, defaults, &logger)
	logger.Info().
		Stringer("fee_acct", bank.FeeAccountID()).
		Stringer("interest_acct", bank.InterestAccountID()).
		Msg("internal accounts ready")

	inFlight := cfg.Limits.InFlight
	if inFlight <= 0 {
		inFlight = 64
	}
	brkrs := bankgo.NewServiceBreaker(gobreaker.Settings{
		Name:    "bankgo",
		Timeout: 30 * time.Second,
	})

	var svc bankgo.Service = bankgo.NewService(bank, &logger)
	for _, mw := range []bankgo.Middleware{
		bankgo.NewValidationMiddleware(),
		bankgo.NewLimitMiddleware(bankgo.NewServiceLimits(inFlight)),
		bankgo.NewCircuitBreakMiddleware(brkrs),
	} {
		svc = mw(svc)
	}

	hndlr := bankgo.NewHTTPHandler(svc, &logger)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":3000"
	}
	logger.Info().Str("addr", addr).Msg("listening")
	if err := http.ListenAndServe(addr, hndlr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
