package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Angabebr/shop-tools/comments"
)

const DefaultModel = "gpt-4o-mini"

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model), nil
}

// NewClientWithConfig allows pointing the client at a compatible endpoint.
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

type DraftRequest struct {
	// Product is the product name or page title the reviews are about.
	Product  string
	Count    int
	Language string
}

const draftSystemPrompt = `You write short, natural customer reviews for an online shop.
Reply with a JSON array only. Each element has the keys "name", "title" and "content".
Use varied, plausible first names. Keep titles under eight words and content under three sentences.`

// DraftComments asks the model for req.Count reviews of req.Product.
// Entries without a name or content are dropped.
func (c *Client) DraftComments(ctx context.Context, req DraftRequest) ([]comments.Comment, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", req.Count)
	}
	if strings.TrimSpace(req.Product) == "" {
		return nil, errors.New("product is required")
	}
	language := req.Language
	if language == "" {
		language = "English"
	}

	prompt := fmt.Sprintf("Write %d reviews in %s for this product: %s", req.Count, language, req.Product)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: draftSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.9,
			MaxTokens:   200 * req.Count,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to draft comments: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	drafts, err := parseComments(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drafted comments: %w", err)
	}
	if len(drafts) > req.Count {
		drafts = drafts[:req.Count]
	}
	return drafts, nil
}

var jsonArrayRegex = regexp.MustCompile(`\[[\s\S]*\]`)

func parseComments(content string) ([]comments.Comment, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	if match := jsonArrayRegex.FindString(content); match != "" {
		content = match
	}

	var raw []comments.Comment
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, err
	}

	out := make([]comments.Comment, 0, len(raw))
	for _, c := range raw {
		c.Name = strings.TrimSpace(c.Name)
		c.Title = strings.TrimSpace(c.Title)
		c.Content = strings.TrimSpace(c.Content)
		if c.Name == "" || c.Content == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
