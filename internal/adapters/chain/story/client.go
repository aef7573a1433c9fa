// Package story provides a Story Protocol client: IP asset mint-and-register
// submission through a transaction relay, and asset lookup through the Story
// HTTP API
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
)

const (
	apiURLDefault      = "https://api.storyapis.com"
	chainDefault       = "story-aeneid"
	spgContractDefault = "0xc32A8a0FF3beDDDa58393d022aF433e78739FAbc"
	defaultTimeout     = 60 * time.Second
)

// ErrPending reports that a transaction has not been indexed yet. It is a
// normal polling outcome, not a failure
var ErrPending = errors.New("story: transaction pending")

// Options configures the Client
type Options struct {
	// RelayURL is the transaction relay that signs and broadcasts the
	// mint-and-register call
	RelayURL string
	// APIURL is the Story asset query API
	APIURL string
	APIKey string
	// Chain selects the network, e.g. "story-aeneid" or "story"
	Chain string
	// SPGContract is the default SPG NFT collection to mint against
	SPGContract string
	Timeout     time.Duration
}

// Client talks to the Story relay and query APIs
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
	if o.Chain == "" {
		o.Chain = chainDefault
	}
	if o.SPGContract == "" {
		o.SPGContract = spgContractDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("story"),
		now:  time.Now,
	}
}

// SPGContract returns the configured default collection contract
func (c *Client) SPGContract() string { return c.opts.SPGContract }

// MintParams carries everything needed for one mint-and-register call
type MintParams struct {
	// SPGContract overrides the configured default collection when set
	SPGContract     string
	MetadataURI     string
	MetadataHash    string
	NFTMetadataURI  string
	NFTMetadataHash string
	Recipient       string
}

// MintReceipt is the relay's answer: the tx hash always, asset ids when the
// relay waited for inclusion
type MintReceipt struct {
	TxHash    string `json:"tx_hash"`
	IPAssetID string `json:"ip_asset_id,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
}

// AssetRecord is a registered IP asset as the query API reports it
type AssetRecord struct {
	IPAssetID string
	TokenID   string
	TxHash    string
}

type mintRequest struct {
	SPGNFTContract string          `json:"spgNftContract"`
	Recipient      string          `json:"recipient,omitempty"`
	IPMetadata     mintRequestMeta `json:"ipMetadata"`
}

type mintRequestMeta struct {
	IPMetadataURI   string `json:"ipMetadataURI"`
	IPMetadataHash  string `json:"ipMetadataHash"`
	NFTMetadataURI  string `json:"nftMetadataURI"`
	NFTMetadataHash string `json:"nftMetadataHash"`
}

// SubmitRegistration broadcasts a mint-and-register transaction. It returns
// as soon as the relay hands back a tx hash; finality is observed later via
// AssetByTx
func (c *Client) SubmitRegistration(ctx context.Context, p MintParams) (MintReceipt, error) {
	if c.opts.RelayURL == "" {
		return MintReceipt{}, perr.Unavailablef("story relay not configured")
	}

	contract := p.SPGContract
	if contract == "" {
		contract = c.opts.SPGContract
	}
	payload, err := json.Marshal(mintRequest{
		SPGNFTContract: contract,
		Recipient:      p.Recipient,
		IPMetadata: mintRequestMeta{
			IPMetadataURI:   p.MetadataURI,
			IPMetadataHash:  p.MetadataHash,
			NFTMetadataURI:  p.NFTMetadataURI,
			NFTMetadataHash: p.NFTMetadataHash,
		},
	})
	if err != nil {
		return MintReceipt{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "story encode request failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.RelayURL+"/ip-assets/mint-and-register", bytes.NewReader(payload))
	if err != nil {
		return MintReceipt{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "story new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return MintReceipt{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story mint request failed")
	}
	defer c.closeBody(resp)

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("story relay response")

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return MintReceipt{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story read body failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return MintReceipt{}, perr.Upstreamf("story mint failed: %s (status %d)", msg, resp.StatusCode)
	}

	var out MintReceipt
	if err := json.Unmarshal(body, &out); err != nil {
		return MintReceipt{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story decode response failed")
	}
	if out.TxHash == "" {
		return MintReceipt{}, perr.Upstreamf("story mint returned no tx hash")
	}
	return out, nil
}

// wire types for the asset query API
type assetQuery struct {
	Options assetQueryOptions `json:"options"`
}

type assetQueryOptions struct {
	Where assetQueryWhere `json:"where"`
}

type assetQueryWhere struct {
	TransactionHash string `json:"transactionHash"`
}

type assetListResponse struct {
	Data []assetItem `json:"data"`
}

type assetItem struct {
	IPID        string `json:"ipId"`
	NFTMetadata struct {
		TokenID string `json:"tokenId"`
	} `json:"nftMetadata"`
	TransactionHash string `json:"transactionHash"`
}

// AssetByTx looks a registered asset up by the transaction that minted it.
// An empty result set means the indexer has not seen the tx yet and maps to
// ErrPending
func (c *Client) AssetByTx(ctx context.Context, txHash string) (AssetRecord, error) {
	if txHash == "" {
		return AssetRecord{}, perr.InvalidArgf("tx hash is required")
	}

	payload, err := json.Marshal(assetQuery{
		Options: assetQueryOptions{Where: assetQueryWhere{TransactionHash: txHash}},
	})
	if err != nil {
		return AssetRecord{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "story encode query failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL+"/api/v3/assets", bytes.NewReader(payload))
	if err != nil {
		return AssetRecord{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "story new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Chain", c.opts.Chain)
	if c.opts.APIKey != "" {
		req.Header.Set("X-Api-Key", c.opts.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return AssetRecord{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story asset query failed")
	}
	defer c.closeBody(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return AssetRecord{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story read body failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return AssetRecord{}, perr.NotFoundf("asset for tx %s not found", txHash)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AssetRecord{}, perr.Upstreamf("story asset query failed: status %d", resp.StatusCode)
	}

	var out assetListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return AssetRecord{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "story decode response failed")
	}
	if len(out.Data) == 0 {
		return AssetRecord{}, ErrPending
	}

	item := out.Data[0]
	if item.IPID == "" {
		return AssetRecord{}, ErrPending
	}
	return AssetRecord{
		IPAssetID: item.IPID,
		TokenID:   item.NFTMetadata.TokenID,
		TxHash:    txHash,
	}, nil
}

// Ping verifies the query API is reachable. Any HTTP answer counts; only a
// transport failure marks the dependency down
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.APIURL+"/api/v3/assets", nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "story new request failed")
	}
	req.Header.Set("X-Chain", c.opts.Chain)
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "story api unreachable")
	}
	c.closeBody(resp)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.opts.APIKey != "" {
		req.Header.Set("X-Api-Key", c.opts.APIKey)
	}
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Error().Err(err).Msg("story close body failed")
	}
}
