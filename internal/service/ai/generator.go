// Package ai generates storefront answers through a configured chat model.
package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/catalog"
	"github.com/PandeyAnukrati/Carti/internal/config"
)

// Generator produces one answer per shopper question. The HTTP layer depends
// on this interface so tests can script answers without a live model.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// Service runs a prompt-template + chat-model chain against the configured
// Ark model, grounding answers in the loaded catalog.
type Service struct {
	cfg   config.AIConfig
	cat   *catalog.Catalog
	chain compose.Runnable[map[string]any, *schema.Message]
	log   zerolog.Logger
}

// NewService compiles the generation chain. Fails if the model credentials
// are missing or the chain cannot be compiled.
func NewService(ctx context.Context, cat *catalog.Catalog, cfg config.AIConfig, log zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile generation chain: %w", err)
	}

	return &Service{cfg: cfg, cat: cat, chain: runnable, log: log}, nil
}

// Generate answers one shopper question. Each exchange is independent; the
// widget keeps its own transcript client-side.
func (s *Service) Generate(ctx context.Context, message string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.systemPrompt(),
		"query":  message,
	})
	if err != nil {
		return "", fmt.Errorf("run generation chain: %w", err)
	}

	s.log.Debug().Int("length", len(response.Content)).Msg("generated answer")
	return response.Content, nil
}

func (s *Service) systemPrompt() string {
	return "You are Carti, the shopping assistant for an online storefront. " +
		"Answer questions about products, availability, compatibility and returns, " +
		"and keep answers short and friendly. " + s.cat.Summary()
}
