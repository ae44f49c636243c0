// Package main serves the homefront API from AWS Lambda behind an API
// Gateway HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/evcraddock/homefront/internal/app"
	"github.com/evcraddock/homefront/internal/config"
	"github.com/evcraddock/homefront/internal/lambdahttp"
	"github.com/evcraddock/homefront/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	// Lambda forwards stderr to CloudWatch.
	logging.SetupWriter(os.Stderr, cfg.DevMode)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("initializing app", "error", err)
		os.Exit(1)
	}

	lambda.Start(lambdahttp.New(a.Server).ProxyV2)
}
