// Package predict obtains UI element boxes for screenshots from a remote
// vision-language model.
package predict

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/internal/corpus"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o"

// DefaultPrompt asks the model for the four recognized element kinds.
const DefaultPrompt = "Find UI elements in this image. Only detect: Button, Input, Radio, Dropdown. " +
	"Return JSON array with format: [{'tag': 'Button', 'x1': 10, 'y1': 20, 'x2': 100, 'y2': 50}]"

// Predictor returns the boxes detected in an encoded image.
type Predictor interface {
	Predict(ctx context.Context, image []byte) ([]uieval.Box, error)
}

// Client queries an OpenAI-compatible chat completions endpoint.
// It is safe for concurrent use.
type Client struct {
	client    openai.Client
	model     string
	maxTokens int
	maxSide   int
	prompt    string
	logger    *slog.Logger
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, cfg.requestOpts...)

	return &Client{
		client:    openai.NewClient(clientOpts...),
		model:     cfg.model,
		maxTokens: cfg.maxTokens,
		maxSide:   cfg.maxSide,
		prompt:    cfg.prompt,
		logger:    cfg.logger,
	}, nil
}

// Predict sends the image to the model and returns the boxes it reports,
// in the image's original pixel space. A reply without a parseable JSON
// array yields no boxes rather than an error.
func (c *Client) Predict(ctx context.Context, image []byte) ([]uieval.Box, error) {
	img, err := prepareImage(image, c.maxSide)
	if err != nil {
		return nil, err
	}

	dataURL := "data:" + img.mime + ";base64," + base64.StdEncoding.EncodeToString(img.data)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(c.prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrPredictionFailed)
	}

	reply := resp.Choices[0].Message.Content
	boxes, err := ExtractBoxes(reply)
	if err != nil {
		c.logger.Warn("unparseable model reply", "error", err, "reply", truncate(reply, 200))
		return []uieval.Box{}, nil
	}

	c.logger.Debug("prediction complete", "boxes", len(boxes), "scale_x", img.scaleX, "scale_y", img.scaleY, "model", c.model)
	return scaleBoxes(boxes, img.scaleX, img.scaleY), nil
}

// ExtractBoxes pulls the JSON box list out of a model reply. Markdown code
// fences are stripped; a ```json fence wins over a plain one.
func ExtractBoxes(reply string) ([]uieval.Box, error) {
	text := reply
	if _, after, ok := strings.Cut(reply, "```json"); ok {
		text, _, _ = strings.Cut(after, "```")
	} else if parts := strings.Split(reply, "```"); len(parts) > 1 {
		text = parts[1]
	}

	boxes, err := corpus.Decode([]byte(strings.TrimSpace(text)))
	if err != nil {
		return nil, fmt.Errorf("parse boxes: %w", err)
	}
	if boxes == nil {
		boxes = []uieval.Box{}
	}
	return boxes, nil
}

func scaleBoxes(boxes []uieval.Box, sx, sy float64) []uieval.Box {
	if sx == 1 && sy == 1 {
		return boxes
	}
	out := make([]uieval.Box, len(boxes))
	for i, b := range boxes {
		out[i] = uieval.Box{
			Tag: b.Tag,
			X1:  b.X1 * sx,
			Y1:  b.Y1 * sy,
			X2:  b.X2 * sx,
			Y2:  b.Y2 * sy,
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
