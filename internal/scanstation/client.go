package scanstation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/pkg/logging"
)

var (
	ErrBadRequest       = errors.New("request rejected by handover service")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

type Config struct {
	ServerAddress string
	Timeout       time.Duration
}

// Client talks to the handover service over its JSON API.
type Client struct {
	client *resty.Client
	logger *logging.ZapLogger
}

func NewClient(cfg Config, logger *logging.ZapLogger) *Client {
	address := cfg.ServerAddress
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	client := resty.New().SetBaseURL(strings.TrimRight(address, "/"))
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{
		client: client,
		logger: logger,
	}
}

// Scan submits one code. Domain outcomes (duplicate, not found, ...) come back
// as a response with the matching Kind; the error is for transport failures.
func (c *Client) Scan(ctx context.Context, code string) (handoverprotocol.ScanResponse, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(handoverprotocol.ScanRequest{Code: code}).
		Post("/api/scan")
	if err != nil {
		return handoverprotocol.ScanResponse{}, fmt.Errorf("scan request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusPreconditionFailed,
		http.StatusInternalServerError:
		res := handoverprotocol.ScanResponse{}
		if err := json.Unmarshal(resp.Body(), &res); err != nil {
			c.logger.ErrorCtx(ctx, "Error unmarshalling scan response", zap.Error(err), zap.Int("status", resp.StatusCode()))
			return handoverprotocol.ScanResponse{}, fmt.Errorf("error unmarshalling scan response: %w", err)
		}
		c.logger.DebugCtx(ctx, "scan answered", zap.String("code", code), zap.String("kind", string(res.Kind)))
		return res, nil
	case http.StatusBadRequest:
		return handoverprotocol.ScanResponse{}, ErrBadRequest
	default:
		return handoverprotocol.ScanResponse{}, fmt.Errorf("%w %v", ErrUnexpectedStatus, resp.StatusCode())
	}
}

func (c *Client) LoadDataset(ctx context.Context, request handoverprotocol.LoadRequest) (handoverprotocol.LoadSummary, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request).
		Post("/api/dataset")
	if err != nil {
		return handoverprotocol.LoadSummary{}, fmt.Errorf("dataset request failed: %w", err)
	}
	res := handoverprotocol.LoadSummary{}
	if err := c.decode(resp, &res); err != nil {
		return handoverprotocol.LoadSummary{}, err
	}
	return res, nil
}

func (c *Client) Stats(ctx context.Context) (handoverprotocol.Stats, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/api/stats")
	if err != nil {
		return handoverprotocol.Stats{}, fmt.Errorf("stats request failed: %w", err)
	}
	res := handoverprotocol.Stats{}
	if err := c.decode(resp, &res); err != nil {
		return handoverprotocol.Stats{}, err
	}
	return res, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]handoverprotocol.ScanEvent, error) {
	req := c.client.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/history")
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	res := make([]handoverprotocol.ScanEvent, 0)
	if err := c.decode(resp, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) decode(resp *resty.Response, out any) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("error unmarshalling response: %w", err)
		}
		return nil
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		return fmt.Errorf("%w %v", ErrUnexpectedStatus, resp.StatusCode())
	}
}
