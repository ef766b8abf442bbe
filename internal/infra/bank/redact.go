package bank

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Keys whose values must never reach the audit log. Matching is
// case-insensitive and covers both wire and storage spellings.
var sensitiveKeys = map[string]struct{}{
	"client_secret":        {},
	"clientsecret":         {},
	"certificate":          {},
	"certificado":          {},
	"password":             {},
	"senha":                {},
	"senha_certificado":    {},
	"certificatepassword":  {},
	"certificate_password": {},
	"access_token":         {},
	"refresh_token":        {},
	"authorization":        {},
}

const redactedValue = "[REDACTED]"

// Redact masks secret values in an outbound or inbound body before it
// reaches the audit sink. JSON bodies are walked structurally; form
// bodies have sensitive field values replaced; anything else passes
// through unchanged (payment payloads carry no secrets outside these
// two shapes).
func Redact(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		masked, err := json.Marshal(redactValue(parsed))
		if err == nil {
			return string(masked)
		}
	}

	if values, err := url.ParseQuery(string(body)); err == nil && looksLikeForm(values) {
		for key := range values {
			if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
				values.Set(key, redactedValue)
			}
		}
		return values.Encode()
	}

	return string(body)
}

func redactValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		for key, val := range vv {
			if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
				vv[key] = redactedValue
				continue
			}
			vv[key] = redactValue(val)
		}
		return vv
	case []any:
		for i, item := range vv {
			vv[i] = redactValue(item)
		}
		return vv
	}
	return v
}

// looksLikeForm filters out plain strings that url.ParseQuery happily
// "parses" into a single valueless key.
func looksLikeForm(values url.Values) bool {
	if len(values) == 0 {
		return false
	}
	for _, vals := range values {
		for _, v := range vals {
			if v != "" {
				return true
			}
		}
	}
	return false
}
