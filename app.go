package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"fasaldoc/cases"
	"fasaldoc/gateway"
	"fasaldoc/photos"
	"fasaldoc/pipeline"
	"fasaldoc/regions"
	"fasaldoc/store"
)

type App struct {
	cfg   Config
	log   *zap.Logger
	mongo *mongo.Client
	db    *mongo.Database
	users *mongo.Collection
	svc   *pipeline.Service
	now   func() time.Time
}

func newApp(ctx context.Context, cfg Config, log *zap.Logger) (*App, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)

	app := &App{
		cfg:   cfg,
		log:   log,
		mongo: client,
		db:    db,
		users: db.Collection("users"),
		now:   time.Now,
	}
	// Indexes
	if _, err := app.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}

	gw, err := newGateway(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	archive, err := photos.New(cfg.Photos)
	if err != nil {
		return nil, err
	}
	lc := cases.NewLifecycle(store.NewMongo(db.Collection("cases")), log.Named("cases"))
	app.svc = pipeline.New(gw, regions.Default(), lc,
		pipeline.WithPhotos(archive),
		pipeline.WithLogger(log.Named("pipeline")),
	)
	return app, nil
}

// newGateway builds the configured model provider with an explicit timeout
// and request logging.
func newGateway(ctx context.Context, cfg Config, log *zap.Logger) (gateway.Gateway, error) {
	var gw gateway.Gateway
	switch cfg.ModelProvider {
	case "", "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required for provider groq")
		}
		gw = gateway.NewGroq(cfg.GroqAPIKey, cfg.GroqModel, nil)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for provider gemini")
		}
		g, err := gateway.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gw = g
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.ModelProvider)
	}
	return gateway.WithLogging(gateway.WithTimeout(gw, cfg.ModelTimeout), log.Named("gateway")), nil
}

func (a *App) close(ctx context.Context) {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
}
