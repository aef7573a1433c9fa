// Package pinata provides a Pinata pinning-service client: content upload,
// gateway retrieval, and pin lifecycle management
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
)

const (
	apiURLDefault     = "https://api.pinata.cloud"
	gatewayDefault    = "gateway.pinata.cloud"
	defaultTimeout    = 60 * time.Second
	maxFetchBodyBytes = 64 << 20
)

// Options configures the Client
type Options struct {
	APIURL string
	// JWT is the Pinata bearer token
	JWT string
	// Gateway is a bare host like "mygw.mypinata.cloud"; the shared public
	// gateway is used when empty
	Gateway string
	Timeout time.Duration
}

// Client is a minimal Pinata REST client
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.APIURL == "" {
		o.APIURL = apiURLDefault
	}
	if o.Gateway == "" {
		o.Gateway = gatewayDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("pinata"),
		now:  time.Now,
	}
}

// PinMeta names a pin and attaches searchable key values
type PinMeta struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

// PinResult is the pinning API response
type PinResult struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinJSONRequest struct {
	PinataContent  json.RawMessage `json:"pinataContent"`
	PinataMetadata *PinMeta        `json:"pinataMetadata,omitempty"`
}

// PinFile uploads raw bytes to Pinata and pins them, returning the CID
func (c *Client) PinFile(ctx context.Context, data []byte, filename string, meta PinMeta) (PinResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata multipart create failed")
	}
	if _, err := fw.Write(data); err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata multipart write failed")
	}
	if meta.Name != "" || len(meta.KeyValues) > 0 {
		mj, err := json.Marshal(meta)
		if err != nil {
			return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata metadata encode failed")
		}
		if err := mw.WriteField("pinataMetadata", string(mj)); err != nil {
			return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata metadata field failed")
		}
	}
	if err := mw.Close(); err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata multipart close failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL+"/pinning/pinFileToIPFS", &buf)
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	return c.doPin(req, "pinFileToIPFS")
}

// PinJSON pins a JSON document as-is, returning the CID
func (c *Client) PinJSON(ctx context.Context, content []byte, meta PinMeta) (PinResult, error) {
	body := pinJSONRequest{PinataContent: json.RawMessage(content)}
	if meta.Name != "" || len(meta.KeyValues) > 0 {
		body.PinataMetadata = &meta
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata encode request failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.doPin(req, "pinJSONToIPFS")
}

// Unpin removes a pin from the account. A missing pin is not an error here
func (c *Client) Unpin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.opts.APIURL+"/pinning/unpin/"+cid, nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata unpin failed")
	}
	defer c.closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Upstreamf("pinata unpin failed: status %d", resp.StatusCode)
	}
	return nil
}

// Fetch retrieves pinned content through the configured gateway
func (c *Client) Fetch(ctx context.Context, cid string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GatewayURL(cid), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata gateway fetch failed")
	}
	defer c.closeBody(resp)

	c.log.Debug().
		Str("cid", cid).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("pinata gateway response")

	if resp.StatusCode == http.StatusNotFound {
		return nil, perr.NotFoundf("content %s not found on gateway", cid)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, perr.Upstreamf("pinata gateway fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata gateway read failed")
	}
	return body, nil
}

// Head reports whether the gateway can serve the CID without downloading it
func (c *Client) Head(ctx context.Context, cid string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.GatewayURL(cid), nil)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata gateway head failed")
	}
	defer c.closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, perr.Upstreamf("pinata gateway head failed: status %d", resp.StatusCode)
	}
	return true, nil
}

// Ping verifies the API credentials via the test-authentication endpoint
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.APIURL+"/data/testAuthentication", nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "pinata new request failed")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata unreachable")
	}
	defer c.closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Upstreamf("pinata auth check failed: status %d", resp.StatusCode)
	}
	return nil
}

// GatewayURL builds the public URL for a CID on the configured gateway.
// Gateway may be a bare host or a full base URL
func (c *Client) GatewayURL(cid string) string {
	base := c.opts.Gateway
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/ipfs/" + cid
}

func (c *Client) authorize(req *http.Request) {
	if c.opts.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.JWT)
	}
}

func (c *Client) doPin(req *http.Request, op string) (PinResult, error) {
	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata %s failed", op)
	}
	defer c.closeBody(resp)

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("pinata http response")

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata %s read failed", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return PinResult{}, perr.Upstreamf("pinata %s failed: %s (status %d)", op, msg, resp.StatusCode)
	}

	var out PinResult
	if err := json.Unmarshal(body, &out); err != nil {
		return PinResult{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "pinata %s decode failed", op)
	}
	if out.IpfsHash == "" {
		return PinResult{}, perr.Upstreamf("pinata %s returned no hash", op)
	}
	return out, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Error().Err(err).Msg("pinata close body failed")
	}
}
