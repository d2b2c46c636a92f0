package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslex "github.com/aws/aws-sdk-go-v2/service/lexruntimev2"

	"assistiq/handler"
	"assistiq/internal/integrations/lexruntime"
	"assistiq/internal/repository"
	"assistiq/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	// Bot identity is deliberately not mustEnv: a misconfigured deployment
	// should answer requests with a structured error, not crash-loop.
	botID := os.Getenv("BOT_ID")
	botAliasID := os.Getenv("BOT_ALIAS_ID")
	botLocaleID := os.Getenv("BOT_LOCALE_ID")
	logsTable := mustEnv("LOGS_TABLE")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	lexClient, err := lexruntime.New(awslex.NewFromConfig(cfg), botID, botAliasID, botLocaleID)
	if err != nil {
		slog.Error("failed to create lex client", "err", err)
		os.Exit(1)
	}
	chatlog, err := repository.NewChatLogClient(awsdynamodb.NewFromConfig(cfg), logsTable)
	if err != nil {
		slog.Error("failed to create chat log client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	relay, err := usecase.NewRelayService(lexClient, chatlog)
	if err != nil {
		slog.Error("failed to create relay service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewChatProxyHandler(relay)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
