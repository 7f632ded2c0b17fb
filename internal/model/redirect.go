// Package model defines shared types for redirect resolution.
package model

// Status line of every redirect the resolver emits.
const (
	RedirectStatus            = "302"
	RedirectStatusDescription = "Found"
)

// RedirectKey identifies a redirect by the request host and first path segment.
type RedirectKey struct {
	Domain string
	Path   string
}

// RedirectRecord is a stored redirect. An empty Target means the record
// carries no usable target attribute.
type RedirectRecord struct {
	Domain string `yaml:"domain"`
	Path   string `yaml:"path"`
	Target string `yaml:"target"`
}

// Key returns the key the record is stored under.
func (r RedirectRecord) Key() RedirectKey {
	return RedirectKey{Domain: r.Domain, Path: r.Path}
}

// HeaderEntry is a single header in CloudFront's header representation.
type HeaderEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RedirectHeaders holds the response headers of a redirect.
type RedirectHeaders struct {
	Location []HeaderEntry `json:"location"`
}

// RedirectResponse is the redirect returned to the caller. Its JSON form is
// the Lambda@Edge generated-response object.
type RedirectResponse struct {
	Status            string          `json:"status"`
	StatusDescription string          `json:"statusDescription"`
	Headers           RedirectHeaders `json:"headers"`
}

// Location returns the redirect target.
func (r RedirectResponse) Location() string {
	if len(r.Headers.Location) == 0 {
		return ""
	}
	return r.Headers.Location[0].Value
}

// Resolution is the outcome of a successful lookup: the derived key, the
// target it resolved to and the response built from it.
type Resolution struct {
	Key      RedirectKey
	Target   string
	Response RedirectResponse
}
