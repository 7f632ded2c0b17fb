// Package redirect derives redirect keys from requests and builds redirect
// responses from stored records.
package redirect

import (
	"redirect-lookup-go/internal/model"
)

// ExtractKey derives the redirect key for a request.
//
// The domain is the host exactly as received; no case folding or port
// stripping is applied, so lookups match whatever the records were written
// with. The path is the first run of ASCII letters and digits that
// immediately follows a '/' in uri, scanning left to right: "/a/b123" yields
// "a" and "/-x/y" yields "y".
func ExtractKey(host, uri string) (model.RedirectKey, error) {
	if host == "" {
		return model.RedirectKey{}, &Error{Kind: ErrExtraction, Err: ErrMissingHost}
	}

	seg, ok := FirstSegment(uri)
	if !ok {
		return model.RedirectKey{}, &Error{Kind: ErrExtraction, Err: ErrNoPathSegment}
	}

	return model.RedirectKey{Domain: host, Path: seg}, nil
}

// FirstSegment returns the first non-empty alphanumeric run that directly
// follows a slash in uri.
func FirstSegment(uri string) (string, bool) {
	for i := 0; i < len(uri); i++ {
		if uri[i] != '/' {
			continue
		}
		j := i + 1
		for j < len(uri) && isAlnum(uri[j]) {
			j++
		}
		if j > i+1 {
			return uri[i+1 : j], true
		}
	}
	return "", false
}

func isAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
