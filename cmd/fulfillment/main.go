package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"assistiq/handler"
	"assistiq/internal/integrations/paramstore"
	"assistiq/internal/integrations/ses"
	"assistiq/internal/repository"
	"assistiq/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	intentsTable := mustEnv("INTENTS_TABLE")
	sessionsTable := mustEnv("SESSIONS_TABLE")
	logsTable := mustEnv("LOGS_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	escalateOnFulfillment := envBool("ESCALATE_ON_FULFILLMENT", true)
	keywordFallback := envBool("KEYWORD_FALLBACK", false)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	intents, err := repository.NewIntentClient(dynamoClient, intentsTable)
	if err != nil {
		slog.Error("failed to create intent client", "err", err)
		os.Exit(1)
	}
	sessions, err := repository.NewSessionClient(dynamoClient, sessionsTable)
	if err != nil {
		slog.Error("failed to create session client", "err", err)
		os.Exit(1)
	}
	chatlog, err := repository.NewChatLogClient(dynamoClient, logsTable)
	if err != nil {
		slog.Error("failed to create chat log client", "err", err)
		os.Exit(1)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	mailer, err := ses.NewMailer(awssesv2.NewFromConfig(cfg), ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	engine, err := usecase.NewEngine(intents, sessions, chatlog, mailer,
		usecase.WithEscalateOnFulfillment(escalateOnFulfillment),
		usecase.WithKeywordFallback(keywordFallback),
	)
	if err != nil {
		slog.Error("failed to create engine", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewFulfillmentHandler(engine)
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

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
