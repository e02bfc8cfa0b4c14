// Package di wires application dependencies into a container.
package di

import (
	"context"
	"fmt"

	"okr-backend/application/ports"
	"okr-backend/application/services"
	"okr-backend/infrastructure/config"
	"okr-backend/infrastructure/messaging"
	"okr-backend/infrastructure/messaging/eventbridge"
	dynamodbstore "okr-backend/infrastructure/persistence/dynamodb"
	"okr-backend/infrastructure/persistence/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     ports.Store
	Publisher ports.EventPublisher

	References *services.References
	Propagator *services.Propagator

	Themes     *repository.ThemeRepository
	Objectives *repository.ObjectiveRepository
	KeyResults *repository.KeyResultRepository
	Goals      *repository.GoalRepository
	Finder     *repository.Finder
}

// InitializeContainer builds the dependency graph from configuration
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	awsCfg, err := provideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	dynamoClient := provideDynamoDBClient(awsCfg, cfg)
	store := dynamodbstore.NewStore(dynamoClient, cfg.DynamoDBTable, cfg.GSI1IndexName, cfg.GSI2IndexName, logger)

	var publisher ports.EventPublisher
	if cfg.EventBusName != "" {
		publisher = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
	} else {
		publisher = messaging.NewNoopPublisher(logger)
	}

	references := services.NewReferences(store, logger)
	propagator := services.NewPropagator(store, publisher, logger)
	finder := repository.NewFinder(store, logger)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Publisher:  publisher,
		References: references,
		Propagator: propagator,
		Themes:     repository.NewThemeRepository(store, publisher, logger),
		Objectives: repository.NewObjectiveRepository(store, references, propagator, publisher, logger),
		KeyResults: repository.NewKeyResultRepository(store, references, propagator, publisher, logger),
		Goals:      repository.NewGoalRepository(store, references, propagator, finder, publisher, logger),
		Finder:     finder,
	}, nil
}

// provideLogger creates a logger matching the environment, at the level
// named by LOG_LEVEL
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// provideAWSConfig creates AWS configuration
func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// provideDynamoDBClient creates a DynamoDB client, pointed at the local
// endpoint when IS_LOCAL is set
func provideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	if cfg.IsLocal {
		return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		})
	}
	return awsdynamodb.NewFromConfig(awsCfg)
}
