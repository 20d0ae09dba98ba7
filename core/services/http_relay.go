package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/go-resty/resty/v2"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

const DefaultHTTPTimeout = 30 * time.Second

// HTTPRelay forwards apiCall requests to arbitrary endpoints
type HTTPRelay struct {
	client *resty.Client
	logger sdklogging.Logger
}

func NewHTTPRelay(timeout time.Duration, log sdklogging.Logger) *HTTPRelay {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &HTTPRelay{
		client: resty.New().SetTimeout(timeout),
		logger: logger.EnsureLogger(log),
	}
}

func absoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("url must be an absolute http(s) url, got %q", raw)
	}
	return u, nil
}

// Call sends req and returns the response whatever its status. The body is
// only forwarded for POST and PUT.
func (r *HTTPRelay) Call(ctx context.Context, req taskengine.HTTPRequest) (*taskengine.HTTPResponse, error) {
	u, err := absoluteURL(req.URL)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	request := r.client.R().SetContext(ctx)

	hasContentType := false
	for key, value := range req.Headers {
		if strings.EqualFold(key, "Content-Type") {
			hasContentType = true
		}
		request.SetHeader(key, value)
	}
	if !hasContentType {
		request.SetHeader("Content-Type", "application/json")
	}

	if (method == http.MethodPost || method == http.MethodPut) && req.Body != "" {
		request.SetBody(req.Body)
	}

	r.logger.Debug("relaying http request", "method", method, "url", u.String())

	resp, err := request.Execute(method, u.String())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Redacted(), err)
	}

	r.logger.Debug("relayed http request", "method", method, "url", u.String(), "status", resp.StatusCode())

	return &taskengine.HTTPResponse{
		Status: resp.StatusCode(),
		Body:   resp.Body(),
	}, nil
}
