package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBodyBytes bounds request bodies when callers pass a non-positive limit.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrEmptyBody is returned for requests without a JSON body.
var ErrEmptyBody = errors.New("empty body")

// DecodeJSON decodes exactly one JSON value from the body into dst.
//
// Unknown fields are ignored: older and newer mobile builds send extra keys.
// Trailing data after the first value is rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	defer func() { _ = r.Body.Close() }()

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}

// DecodeAndValidate decodes the body and validates it, writing the 400
// response itself on failure. It reports whether the handler may continue.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, maxBytes int64, v *Validator, dst any) bool {
	if err := DecodeJSON(w, r, maxBytes, dst); err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid request body")
		return false
	}
	if details := v.Struct(dst); len(details) > 0 {
		WriteValidation(w, details)
		return false
	}
	return true
}
