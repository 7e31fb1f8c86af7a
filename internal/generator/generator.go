package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"truthfeed/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Draft is the generated text of a post.
type Draft struct {
	Headline   string
	Content    string
	IsTrueFact bool
	Theme      string
	Model      string
}

// Generator runs the two-step title then content exchange.
type Generator struct {
	client ChatClient
	log    *slog.Logger
}

func New(client ChatClient, log *slog.Logger) *Generator {
	return &Generator{client: client, log: log}
}

// Generate asks for a headline (unless opts.ForceTitle is set) and then for a
// body written against that headline. Completions are used verbatim.
func (g *Generator) Generate(ctx context.Context, opts Options) (Draft, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Draft{}, err
	}

	span, ctx := observability.NewSpan(ctx, "generator.Generate")
	defer span.End()
	span.AddAttributes(
		attribute.String("generator.model", opts.Model),
		attribute.String("generator.theme", opts.Theme),
		attribute.Bool("generator.is_info_true", opts.IsInfoTrue),
	)

	headline := strings.TrimSpace(opts.ForceTitle)
	if headline == "" {
		var err error
		headline, err = g.step(ctx, "title", opts.Model, TitlePrompt(opts))
		if err != nil {
			span.SetError(err)
			return Draft{}, err
		}
	}

	content, err := g.step(ctx, "content", opts.Model, ContentPrompt(opts, headline))
	if err != nil {
		span.SetError(err)
		return Draft{}, err
	}

	g.log.InfoContext(ctx, "Post generated",
		slog.String("model", opts.Model),
		slog.String("theme", opts.Theme),
		slog.Bool("is_true_fact", opts.IsInfoTrue),
		slog.Int("content_length", len(content)),
	)

	return Draft{
		Headline:   headline,
		Content:    content,
		IsTrueFact: opts.IsInfoTrue,
		Theme:      opts.Theme,
		Model:      opts.Model,
	}, nil
}

func (g *Generator) step(ctx context.Context, name, model, prompt string) (string, error) {
	done := observability.TrackGeneration(name)
	text, err := g.client.Complete(ctx, model, []Message{{Role: "user", Content: prompt}})
	if err == nil && strings.TrimSpace(text) == "" {
		err = &Error{Kind: KindInvalidResponse, Err: errors.New("empty " + name)}
	}
	if err != nil {
		outcome := string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		done(outcome)
		g.log.ErrorContext(ctx, "Generation step failed", slog.String("step", name), slog.String("error", err.Error()))
		return "", err
	}
	done("ok")
	return text, nil
}
