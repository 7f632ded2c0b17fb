package model

import "encoding/json"

// CloudFrontEvent is the Lambda@Edge event envelope.
type CloudFrontEvent struct {
	Records []CloudFrontRecord `json:"Records"`
}

// CloudFrontRecord wraps a single CloudFront event.
type CloudFrontRecord struct {
	CF CloudFrontPayload `json:"cf"`
}

// CloudFrontPayload carries the distribution config and the viewer request.
// The request stays raw so it can be handed back to CloudFront byte for byte.
type CloudFrontPayload struct {
	Config  CloudFrontConfig `json:"config"`
	Request json.RawMessage  `json:"request"`
}

// CloudFrontConfig describes the distribution that triggered the event.
type CloudFrontConfig struct {
	DistributionDomainName string `json:"distributionDomainName,omitempty"`
	DistributionID         string `json:"distributionId,omitempty"`
	EventType              string `json:"eventType,omitempty"`
	RequestID              string `json:"requestId,omitempty"`
}

// CloudFrontRequest is the part of the viewer request the resolver reads.
// Headers are keyed by lowercase header name.
type CloudFrontRequest struct {
	ClientIP    string                   `json:"clientIp,omitempty"`
	Method      string                   `json:"method,omitempty"`
	URI         string                   `json:"uri"`
	QueryString string                   `json:"querystring"`
	Headers     map[string][]HeaderEntry `json:"headers"`
}

// Header returns the first value of the named (lowercase) header.
func (r CloudFrontRequest) Header(name string) string {
	vals := r.Headers[name]
	if len(vals) == 0 {
		return ""
	}
	return vals[0].Value
}
