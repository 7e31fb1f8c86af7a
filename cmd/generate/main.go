// Command generate drafts posts for a study with an LLM and stores them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"truthfeed/internal/bootstrap"
	"truthfeed/internal/config"
	"truthfeed/internal/generator"
	"truthfeed/internal/observability"
	"truthfeed/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	studyID := flag.Uint("study", 0, "Study to add posts to")
	sourceID := flag.Uint("source", 0, "Source that publishes the posts")
	amount := flag.Int("amount", 1, "Number of posts to generate")
	model := flag.String("model", "", "Chat model (defaults to OPENAI_MODEL)")
	theme := flag.String("theme", "", "Theme for every post (random when empty)")
	noHashtag := flag.Bool("no-hashtag", false, "Ask the model not to end posts with hashtags")
	minChar := flag.Int("min-char", generator.DefaultMinChar, "Minimum post length in characters")
	maxChar := flag.Int("max-char", generator.DefaultMaxChar, "Maximum post length in characters")
	flag.Parse()

	if *studyID == 0 || *sourceID == 0 {
		return fmt.Errorf("usage: go run ./cmd/generate -study <id> -source <id> [-amount n]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireGeneration(); err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())

	rt, err := bootstrap.InitRuntime(ctx, cfg, logger, bootstrap.Options{ServiceName: "truthfeed-generate"})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	client, err := generator.NewHTTPClient(generator.ClientConfig{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		Timeout:    time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
		MaxRetries: cfg.OpenAIMaxRetries,
	}, logger)
	if err != nil {
		return err
	}

	posts := service.NewPostService(
		rt.Repos.Studies,
		rt.Repos.Posts,
		rt.Repos.Sources,
		rt.Repos.Comments,
		generator.New(client, logger),
		service.DefaultReactionProfile(),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logger,
	)

	chosenModel := *model
	if chosenModel == "" {
		chosenModel = cfg.OpenAIModel
	}

	created, err := posts.BuildPosts(observability.WithStudyID(ctx, *studyID), service.BuildPostsInput{
		StudyID:   *studyID,
		SourceID:  *sourceID,
		Amount:    *amount,
		Model:     chosenModel,
		NoHashtag: *noHashtag,
		Theme:     *theme,
		MinChar:   *minChar,
		MaxChar:   *maxChar,
	})
	if err != nil {
		return fmt.Errorf("generate posts: %w", err)
	}

	for _, p := range created {
		logger.InfoContext(ctx, "Post stored",
			slog.Uint64("post_id", uint64(p.ID)),
			slog.Bool("is_true_fact", p.IsTrueFact),
			slog.String("headline", p.Headline),
		)
	}
	return nil
}
