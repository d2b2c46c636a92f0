// Command seed loads intent definitions from a YAML file into the intents
// table. It is the only writer of the knowledge base; the fulfillment engine
// reads it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"gopkg.in/yaml.v3"

	"assistiq/internal/domain"
	"assistiq/internal/repository"
)

func main() {
	table := flag.String("table", os.Getenv("INTENTS_TABLE"), "intents DynamoDB table name")
	file := flag.String("file", "intents.yaml", "path to the intents YAML file")
	flag.Parse()

	if *table == "" {
		slog.Error("intents table name is required (-table or INTENTS_TABLE)")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		slog.Error("failed to read intents file", "file", *file, "err", err)
		os.Exit(1)
	}

	var defs []domain.IntentDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		slog.Error("failed to parse intents file", "file", *file, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}
	intents, err := repository.NewIntentClient(awsdynamodb.NewFromConfig(cfg), *table)
	if err != nil {
		slog.Error("failed to create intent client", "err", err)
		os.Exit(1)
	}

	seeded, skipped := 0, 0
	for _, def := range defs {
		if def.ID == "" {
			slog.Warn("skipping definition without id")
			skipped++
			continue
		}
		if err := intents.Put(ctx, def); err != nil {
			slog.Error("failed to seed intent", "id", def.ID, "err", err)
			os.Exit(1)
		}
		slog.Info("seeded intent", "id", def.ID)
		seeded++
	}
	slog.Info("done", "seeded", seeded, "skipped", skipped)
}
