package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dusthunter/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingPairs is returned when the response has no "pairs" field at all.
var ErrMissingPairs = errors.New("dexscreener response has no pairs field")

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	// SearchPairs returns every trading pair DEX Screener matches for a free-text query.
	SearchPairs(ctx context.Context, query string) ([]entity.PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
// requestsPerMinute <= 0 disables client-side rate limiting.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) DEXScreenerClient {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute/10+1)
	}
	return &dexScreenerClientImpl{
		client:  &fasthttp.Client{Name: "dusthunter"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: limiter,
		logger:  logger.Named("DEXScreenerClient"),
	}
}

// SearchPairs implements the DEXScreenerClient interface.
func (c *dexScreenerClientImpl) SearchPairs(ctx context.Context, query string) ([]entity.PairData, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for DEX Screener rate limiter: %w", err)
	}

	requestURL := fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(query))
	c.logger.Debug("Requesting pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > c.timeout {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}
	// fasthttp does not watch ctx; a cancellation that raced the request still wins.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var searchResp entity.SearchResponse
	if err := json.Unmarshal(rawBody, &searchResp); err != nil {
		c.logger.Warn("Failed to unmarshal DEX Screener search response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}
	if searchResp.Pairs == nil {
		return nil, fmt.Errorf("%s: %w", requestURL, ErrMissingPairs)
	}

	c.logger.Debug("Successfully unmarshalled DEX Screener search response",
		zap.String("query", query),
		zap.Int("pairCount", len(searchResp.Pairs)))
	return searchResp.Pairs, nil
}
