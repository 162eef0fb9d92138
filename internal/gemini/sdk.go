package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type SDKOptions struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// SDKClient implements Transport on top of google.golang.org/genai.
type SDKClient struct {
	client *genai.Client
	logger zerolog.Logger
}

func NewSDK(ctx context.Context, opts SDKOptions) (*SDKClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("genai: api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    opts.BaseURL,
			APIVersion: opts.APIVersion,
		},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &SDKClient{client: client, logger: opts.Logger}, nil
}

func (s *SDKClient) GenerateContent(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = DefaultImageModel
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		gp := &genai.Part{Text: p.Text}
		if p.InlineData != nil {
			gp.InlineData = &genai.Blob{
				MIMEType: p.InlineData.MimeType,
				Data:     p.InlineData.Data,
			}
		}
		parts = append(parts, gp)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: req.ResponseModalities,
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		return Response{}, fromSDKError(err)
	}

	var out Response
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil {
			continue
		}
		converted := Part{Text: p.Text}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			converted.InlineData = &Blob{Data: p.InlineData.Data, MimeType: p.InlineData.MIMEType}
		}
		out.Parts = append(out.Parts, converted)
	}

	s.logger.Debug().Str("model", model).Int("parts", len(out.Parts)).Msg("genai generateContent")
	return out, nil
}

func fromSDKError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &APIError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("request: %w", err)
}
