package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mathdaily/backend/internal/models"
)

// Sentinel errors let HTTP handlers map provider failures to stable
// response codes without inspecting provider-specific error types.
var (
	ErrAuth  = errors.New("invalid API key")
	ErrQuota = errors.New("rate limit exceeded")
)

// LLMClient is the interface every provider implementation satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and turns worksheet requests into parsed
// problem batches.
type Generator struct {
	llm   LLMClient
	model string
}

// NewGenerator picks a provider from the environment. OpenAI is the
// default; setting LLM_PROVIDER=anthropic switches SDKs, and
// MOCK_GENERATOR=true (or no API key at all) falls back to the local
// template bank so development works offline.
func NewGenerator() *Generator {
	var llm LLMClient
	model := "bank"

	switch {
	case os.Getenv("MOCK_GENERATOR") == "true":
		llm = NewBankClient(rand.New(rand.NewSource(time.Now().UnixNano())))
		log.Println("Generator using local problem bank (mock mode)")
	case os.Getenv("LLM_PROVIDER") == "anthropic" && os.Getenv("ANTHROPIC_API_KEY") != "":
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-5"
		}
		llm = NewAnthropicClient(model)
		log.Println("Generator using Anthropic API:", model)
	case os.Getenv("OPENAI_API_KEY") != "":
		model = os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		llm = NewOpenAIClient(model)
		log.Println("Generator using OpenAI API:", model)
	default:
		llm = NewBankClient(rand.New(rand.NewSource(time.Now().UnixNano())))
		log.Println("No API key configured, generator using local problem bank")
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateProblems produces a worksheet batch for one request. Provider
// failures come back wrapped in ErrAuth or ErrQuota where the cause is
// identifiable; parse failures come back as a ValidationError or JSON
// error from ParseResponse.
func (g *Generator) GenerateProblems(ctx context.Context, req models.GenerateRequest) ([]models.Problem, error) {
	systemPrompt := BuildSystemPrompt(req.SchoolLevel, req.Grade, req.Difficulty, req.Topics)
	userPrompt := BuildUserPrompt(req.Count, req.Topics)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var resp *LLMResponse
	var err error
	if bank, ok := g.llm.(*BankClient); ok {
		// The bank reads the structured request directly instead of
		// round-tripping it through prompt text.
		resp = &LLMResponse{Content: bank.ProblemsJSON(req)}
	} else {
		resp, err = g.llm.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return nil, fmt.Errorf("generate problems: %w", err)
		}
	}

	payloads, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse generation response: %w", err)
	}

	problems := make([]models.Problem, 0, len(payloads))
	for i, p := range payloads {
		problems = append(problems, models.Problem{
			ID:          uuid.NewString(),
			OrderNum:    i + 1,
			Question:    p.Question,
			Answer:      p.Answer,
			Options:     p.Options,
			Type:        p.Type,
			Topic:       p.Topic,
			Difficulty:  difficultyFromInt(p.Difficulty),
			Explanation: p.Explanation,
			SVG:         p.SVG,
		})
	}

	return problems, nil
}

func difficultyFromInt(d int) models.Difficulty {
	switch d {
	case 3:
		return models.DifficultyHard
	case 2:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// ── OpenAIClient ───────────────────────────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model string) *OpenAIClient {
	client := openai.NewClient(os.Getenv("OPENAI_API_KEY"))
	return &OpenAIClient{client: client, model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.6,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	return &LLMResponse{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrQuota, err)
		}
	}
	return fmt.Errorf("openai API: %w", err)
}

// ── AnthropicClient ────────────────────────────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.6),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}

	var apiErr *anthropic.Error
	if errors.As(lastErr, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %v", ErrAuth, lastErr)
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %v", ErrQuota, lastErr)
		}
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}
