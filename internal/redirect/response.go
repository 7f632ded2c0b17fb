package redirect

import (
	"redirect-lookup-go/internal/model"
)

// BuildResponse turns a stored record into a 302 response. The target is
// passed through verbatim; records without a target are rejected instead of
// producing an empty Location.
func BuildResponse(rec model.RedirectRecord) (model.RedirectResponse, error) {
	if rec.Target == "" {
		return model.RedirectResponse{}, &Error{
			Kind: ErrMalformedRecord,
			Key:  rec.Key(),
			Err:  ErrMissingTarget,
		}
	}

	return model.RedirectResponse{
		Status:            model.RedirectStatus,
		StatusDescription: model.RedirectStatusDescription,
		Headers: model.RedirectHeaders{
			Location: []model.HeaderEntry{{Key: "Location", Value: rec.Target}},
		},
	}, nil
}
