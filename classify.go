package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// Bounded deadline on the decision-service call so a stuck upstream
// cannot block the update loop indefinitely.
const classifyTimeout = 60 * time.Second

const promptRecentLimit = 5

var workTypes = []string{
	"📥 Принят заказ",
	"✂️ Пошив",
	"📦 Отгрузка",
	"📦 Упаковка",
	"✂️ Раскрой",
	"🏷️ Маркировка",
}

// Classifier asks the decision service for a raw response to one message.
// One call per message, no retries; errors propagate to the caller.
type Classifier func(ctx context.Context, text string, role Role, botCtx Context) (string, error)

func NewClassifier(cfg Config) Classifier {
	return func(ctx context.Context, text string, role Role, botCtx Context) (string, error) {
		systemPrompt := buildClassifierPrompt(role, botCtx)

		switch cfg.LLMProvider {
		case "openai":
			model := cfg.LLMModel
			if model == "" {
				model = defaultOpenAIModel
			}
			log.Printf("llm classify provider=openai model=%s user=%s", model, role.Name)
			return callOpenAI(ctx, cfg.OpenAIAPIKey, model, systemPrompt, text)
		default:
			model := cfg.LLMModel
			if model == "" {
				model = defaultAnthropicModel
			}
			log.Printf("llm classify provider=anthropic model=%s user=%s", model, role.Name)
			return callAnthropic(ctx, cfg.AnthropicAPIKey, model, systemPrompt, text)
		}
	}
}

func buildClassifierPrompt(role Role, botCtx Context) string {
	supervisorMark := ""
	if role.IsSupervisor {
		supervisorMark = " (руководитель)"
	}

	var recentLines strings.Builder
	for i, e := range botCtx.Recent {
		if i >= promptRecentLimit {
			break
		}
		recentLines.WriteString("- " + e.StaffName + ": " + e.WorkType)
		if e.Client != "" {
			recentLines.WriteString(" (" + e.Client + ")")
		}
		recentLines.WriteString("\n")
	}

	var typeLines strings.Builder
	for _, wt := range workTypes {
		typeLines.WriteString("- " + wt + "\n")
	}

	return fmt.Sprintf(`Ты AI помощник для текстильной компании.

ПОЛЬЗОВАТЕЛЬ: %s%s

КЛИЕНТЫ: %s
СОТРУДНИКИ: %s

ПОСЛЕДНИЕ РАБОТЫ:
%s
ДЕЙСТВИЯ:
1. record - записать работу (если описывает задачу)
2. clarify - уточнить детали (если чего-то не хватает)
3. answer - ответить на вопрос

ТИПЫ РАБОТ:
%s
ОТВЕТ В JSON:
{
  "action": "record|clarify|answer",
  "message": "текст для пользователя",
  "data": {
    "workType": "тип с эмодзи",
    "client": "имя клиента",
    "quantity": "число",
    "details": "описание"
  }
}

ПРАВИЛА:
- Если описывает работу БЕЗ клиента - clarify
- Если всё понятно - record
- Если вопрос - answer используя контекст
- Будь краток и дружелюбен`,
		role.Name, supervisorMark,
		strings.Join(botCtx.ClientNames, ", "),
		strings.Join(botCtx.StaffNames, ", "),
		recentLines.String(),
		typeLines.String(),
	)
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := openai.NewClient(apiKey)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	content := resp.Choices[0].Message.Content
	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(content), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return content, nil
}
