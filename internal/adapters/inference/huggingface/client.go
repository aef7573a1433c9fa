// Package huggingface provides a text-to-image inference client for the
// Hugging Face serverless inference API
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
)

const (
	baseURLDefault = "https://api-inference.huggingface.co"
	modelDefault   = "black-forest-labs/FLUX.1-schnell"

	// image generation is slow; the provider can hold the request while a
	// cold model spins up
	defaultTimeout = 120 * time.Second

	// responses are image payloads; cap reads defensively
	maxBodyBytes = 32 << 20
)

// Options configures the Client
type Options struct {
	BaseURL string
	Token   string
	Model   string
	Timeout time.Duration
}

// Client is a minimal inference REST client.
// Failures are fatal-for-this-request: no retry happens at this layer,
// rate limiting and admission are enforced upstream
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Model == "" {
		o.Model = modelDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("huggingface"),
		now:  time.Now,
	}
}

// Model returns the configured default model
func (c *Client) Model() string { return c.opts.Model }

// GenerateParams are the inputs for one text-to-image call
type GenerateParams struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	// Model overrides the configured default when set
	Model string
}

// Image is a generated image artifact: raw bytes plus the declared mime type
type Image struct {
	Bytes    []byte
	MimeType string
}

// wire types for the inference payload
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Generate runs one text-to-image inference call and returns the image bytes
func (c *Client) Generate(ctx context.Context, p GenerateParams) (Image, error) {
	model := p.Model
	if model == "" {
		model = c.opts.Model
	}

	payload, err := json.Marshal(generateRequest{
		Inputs: p.Prompt,
		Parameters: generateParameters{
			NegativePrompt: p.NegativePrompt,
			Width:          p.Width,
			Height:         p.Height,
		},
	})
	if err != nil {
		return Image{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "huggingface encode request failed")
	}

	url := c.opts.BaseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Image{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "huggingface new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "huggingface request failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("huggingface close body failed")
		}
	}()

	c.log.Debug().
		Str("model", model).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("huggingface http response")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Image{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "huggingface read body failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := providerMessage(body)
		return Image{}, perr.Upstreamf("huggingface inference failed: %s (status %d)", msg, resp.StatusCode)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return Image{Bytes: body, MimeType: mime}, nil
}

// providerMessage pulls the error string out of an HF error body when present
func providerMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
