package nike

import (
	"context"
	"net/http"
)

// AggregationGateway reads the aggregated sport statistics of the user.
type AggregationGateway struct {
	EndpointGateway
}

// NewAggregationGateway is the registry constructor for "Aggregation".
func NewAggregationGateway(configuration map[string]any, logger Logger) *AggregationGateway {
	return &AggregationGateway{EndpointGateway: NewEndpointGateway(configuration, logger)}
}

// Aggregation returns the parsed me/sport document unmodified.
func (g *AggregationGateway) Aggregation(ctx context.Context) (any, error) {
	value, err := g.request(ctx, "me/sport", http.MethodGet, nil, nil)
	if err != nil {
		return nil, wrapError(err, CodeAggregation, "Could not fetch aggregated sport data.")
	}
	return value, nil
}
