package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"artlens-pro/internal/artstyle"
	"artlens-pro/internal/datauri"
	"artlens-pro/internal/gemini"
)

const (
	resultMimeType     = "image/png"
	returnOnlyImageTip = "\n\nReturn only the processed image."
)

type Options struct {
	APIKey    string
	Model     string
	Transport gemini.Transport
	Logger    zerolog.Logger
}

// Client turns a source image and a style choice into one call against the
// image model.
type Client struct {
	apiKey    string
	model     string
	transport gemini.Transport
	logger    zerolog.Logger
}

func New(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = gemini.DefaultImageModel
	}

	return &Client{
		apiKey:    strings.TrimSpace(opts.APIKey),
		model:     model,
		transport: opts.Transport,
		logger:    opts.Logger,
	}
}

func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// PreviewPrompt is the prompt shown to the user for the current controls.
func PreviewPrompt(style artstyle.ID, intensity int) string {
	return artstyle.BuildPrompt(artstyle.Lookup(style), intensity)
}

func RequestPrompt(style artstyle.ID, intensity int) string {
	return PreviewPrompt(style, intensity) + returnOnlyImageTip
}

// Generate sends sourceImage (a data URI) to the model and returns the restyled
// image as a PNG data URI. It performs at most one network call and never retries.
func (c *Client) Generate(ctx context.Context, sourceImage string, style artstyle.ID, intensity int) (string, error) {
	src, err := datauri.Parse(sourceImage)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	if c.apiKey == "" {
		return "", ErrMissingCredential
	}
	if c.transport == nil {
		return "", &RemoteError{Err: errors.New("transport is not configured")}
	}

	intensity = artstyle.ClampIntensity(intensity)
	logger := c.logger.With().
		Str("generation_id", uuid.NewString()).
		Str("style", string(style)).
		Int("intensity", intensity).
		Logger()

	logger.Info().
		Str("model", c.model).
		Int("image_bytes", len(src.Data)).
		Str("image_mime", src.MimeType).
		Msg("sending image for restyling")

	start := time.Now()
	resp, err := c.transport.GenerateContent(ctx, gemini.Request{
		Model: c.model,
		Parts: []gemini.Part{
			{InlineData: &gemini.Blob{Data: src.Data, MimeType: src.MimeType}},
			{Text: RequestPrompt(style, intensity)},
		},
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		logger.Error().Err(err).Dur("dur", time.Since(start)).Msg("generation request failed")
		return "", toRemoteError(err)
	}

	for _, p := range resp.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			logger.Info().
				Int("output_bytes", len(p.InlineData.Data)).
				Dur("dur", time.Since(start)).
				Msg("generation complete")
			return datauri.Encode(datauri.Blob{Data: p.InlineData.Data, MimeType: resultMimeType}), nil
		}
	}

	text := responseText(resp)
	logger.Warn().Str("text", truncate(text, 200)).Msg("model returned no image")
	if text != "" {
		return "", fmt.Errorf("%w (text: %s)", ErrNoImageReturned, truncate(text, 200))
	}
	return "", ErrNoImageReturned
}

func toRemoteError(err error) error {
	remote := &RemoteError{Err: err}
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		remote.StatusCode = apiErr.StatusCode
	}
	return remote
}

func responseText(resp gemini.Response) string {
	var b strings.Builder
	for _, p := range resp.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
