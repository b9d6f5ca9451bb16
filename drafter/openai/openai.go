// Package openai provides a drafter.Generator backed by the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/drafter"
)

// Options configure the OpenAI generator. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI Chat Completions API behind the drafter.Generator interface.
type Generator struct {
	client *openai.Client
	opts   Options
}

// Interface compliance (compile-time assertion)
var _ drafter.Generator = (*Generator)(nil)

// New creates a new OpenAI generator using the official client.
func New(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// DraftReply implements drafter.Generator.
func (g *Generator) DraftReply(ctx context.Context, email core.Email) (drafter.Proposal, error) {
	params := openai.ChatCompletionNewParams{
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(drafter.Prompt(email)),
		},
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return drafter.Proposal{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return drafter.Proposal{}, fmt.Errorf("no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return drafter.Proposal{}, fmt.Errorf("openai returned no text content")
	}

	return drafter.Proposal{
		To:      email.Sender,
		Subject: drafter.ReplySubject(email.Subject),
		Content: content,
	}, nil
}
