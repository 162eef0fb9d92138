package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the Generative Language REST API directly.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

func (c *Client) GenerateContent(ctx context.Context, req Request) (Response, error) {
	if c.httpClient == nil {
		return Response{}, errors.New("http client is nil")
	}

	model := req.Model
	if model == "" {
		model = DefaultImageModel
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: toWireParts(req.Parts)}},
	}
	if len(req.ResponseModalities) > 0 {
		payload.GenerationConfig = &generationConfig{ResponseModalities: req.ResponseModalities}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("model", model).
		Int("status", httpResp.StatusCode).
		Int("body_bytes", len(rawBody)).
		Dur("dur", time.Since(start)).
		Msg("gemini generateContent")

	if httpResp.StatusCode >= 400 {
		return Response{}, decodeAPIError(httpResp, rawBody)
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return Response{}, &APIError{
			StatusCode: decoded.Error.Code,
			Status:     decoded.Error.Status,
			Message:    decoded.Error.Message,
		}
	}

	return extractParts(decoded)
}

func toWireParts(parts []Part) []part {
	out := make([]part, 0, len(parts))
	for _, p := range parts {
		wp := part{Text: p.Text}
		if p.InlineData != nil {
			wp.InlineData = &blob{
				Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
				MimeType: p.InlineData.MimeType,
			}
		}
		out = append(out, wp)
	}
	return out
}

func extractParts(resp generateContentResponse) (Response, error) {
	if len(resp.Candidates) == 0 {
		return Response{}, nil
	}

	var out Response
	for _, p := range resp.Candidates[0].Content.Parts {
		converted := Part{Text: p.Text}
		if p.InlineData != nil && p.InlineData.Data != "" {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return Response{}, fmt.Errorf("decode inline data: %w", err)
			}
			converted.InlineData = &Blob{Data: data, MimeType: p.InlineData.MimeType}
		}
		out.Parts = append(out.Parts, converted)
	}
	return out, nil
}

func decodeAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    strings.TrimSpace(string(body)),
	}

	var envelope struct {
		Error *errorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *errorBody  `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
