// Package ai drafts product descriptions for the admin dashboard.
package ai

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type Describer struct {
	client *openai.Client
	model  string
}

func NewFromEnv() *Describer {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Describer{client: openai.NewClient(key), model: model}
}

// Describe returns a short Bulgarian product description for the given name
// and optional hints. The admin reviews the text before saving it.
func (d *Describer) Describe(ctx context.Context, name, hints string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := "Напиши кратко продуктово описание (2-3 изречения) на български за: " + name
	if strings.TrimSpace(hints) != "" {
		prompt += "\nДопълнителна информация: " + hints
	}
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Ти си копирайтър за онлайн магазин за бижута и аксесоари."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
