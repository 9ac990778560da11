package main

import (
	"os"
	"time"

	"github.com/propmarket/apicore/internal/mockapi"
	"github.com/propmarket/apicore/internal/utils/config"
	"github.com/propmarket/apicore/internal/utils/logger"
)

const listenAddr = ":5000"

func main() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	var opts []mockapi.Option
	if warmup := os.Getenv("MOCKAPI_WARMUP"); warmup != "" {
		d, err := time.ParseDuration(warmup)
		if err != nil {
			logger.Fatal("invalid MOCKAPI_WARMUP", map[string]string{"error": err.Error()})
		}
		opts = append(opts, mockapi.WithWarmup(d))
	}

	r := mockapi.NewRouter(appConfig, logger, opts...)

	logger.Info("mock marketplace backend listening", map[string]string{
		"addr": listenAddr,
	})

	if err := r.Run(listenAddr); err != nil {
		logger.Fatal("server stopped", map[string]string{"error": err.Error()})
	}
}
