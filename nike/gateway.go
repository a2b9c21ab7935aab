package nike

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	goerrors "github.com/goliatone/go-errors"
)

// Gateway is an endpoint group served over a shared OAuthService.
type Gateway interface {
	SetService(service OAuthService) error
	Configuration() map[string]any
}

// EndpointGateway is embedded by every gateway and owns the request pipeline.
type EndpointGateway struct {
	service       OAuthService
	configuration map[string]any
	logger        Logger
}

// NewEndpointGateway creates the base gateway with the configuration handed out by the factory.
func NewEndpointGateway(configuration map[string]any, logger Logger) EndpointGateway {
	if logger == nil {
		logger = nopLogger{}
	}
	return EndpointGateway{
		configuration: configuration,
		logger:        logger,
	}
}

// SetService injects the shared OAuth service.
func (g *EndpointGateway) SetService(service OAuthService) error {
	if service == nil {
		return errors.New("service must not be nil")
	}
	g.service = service
	return nil
}

// Service returns the injected OAuth service.
func (g *EndpointGateway) Service() OAuthService {
	return g.service
}

// Configuration returns the configuration map the gateway was created with.
func (g *EndpointGateway) Configuration() map[string]any {
	return g.configuration
}

// request sends a call through the OAuth service and decodes the JSON answer.
// GET parameters are moved into the query string.
func (g *EndpointGateway) request(ctx context.Context, resource, method string, body Params, headers map[string]string) (any, error) {
	if method == "" {
		method = http.MethodGet
	}
	if method == http.MethodGet && len(body) > 0 {
		sep := "?"
		if strings.Contains(resource, "?") {
			sep = "&"
		}
		resource += sep + body.Encode()
		body = nil
	}
	if g.service == nil {
		return nil, missingService(CodeTransport).
			WithMetadata(map[string]any{"resource": resource, "method": method})
	}

	start := time.Now()
	raw, err := g.service.Request(ctx, resource, method, body, headers)
	g.logger.Debug("nike request", "method", method, "resource", resource, "elapsed", time.Since(start))
	if err != nil {
		meta := map[string]any{"resource": resource, "method": method}
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			meta["status"] = respErr.StatusCode
			if title := htmlTitle(respErr.Body); title != "" {
				meta["upstream_title"] = title
			}
		}
		return nil, wrapError(err, CodeTransport, "An error occurred while requesting the endpoint.").
			WithMetadata(meta)
	}

	value, err := decodeJSON(raw)
	if err != nil {
		meta := map[string]any{"resource": resource, "method": method}
		if title := htmlTitle(raw); title != "" {
			meta["upstream_title"] = title
		}
		return nil, wrapError(wrapError(err, CodeJSONDecode, "Could not decode JSON."),
			CodeResponseParse, "Could not parse the endpoint response.").
			WithMetadata(meta)
	}
	return value, nil
}

// ErrNoService is the cause of every error from a gateway used before SetService.
var ErrNoService = errors.New("nike: no service injected into the gateway")

func missingService(code Code) *goerrors.Error {
	return wrapError(ErrNoService, code, "No service has been injected into the gateway.")
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

// htmlTitle returns the <title> of an HTML error page, or "".
func htmlTitle(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
