// Package http provides the JSON API server and its handlers.
//
// This file implements parsing of request bodies and query parameters.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/services"
)

// maxBodyBytes bounds request bodies; a draft is a few hundred bytes.
const maxBodyBytes = 64 << 10

var (
	ErrBodyTooLarge    = errors.New("request body too large")
	ErrInvalidMonths   = fmt.Errorf("months must be an integer between 1 and %d", services.MaxMonthWindow)
	ErrUnsupportedBody = errors.New("unsupported content type")
)

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as sanitised strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse decodes the body according to its content type. Without a content
// type, a body starting with '{' is taken as JSON and anything else as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	mediaType := ""
	if p.contentType != "" {
		mt, _, err := mime.ParseMediaType(p.contentType)
		if err != nil {
			p.err = fmt.Errorf("%w: %q", ErrUnsupportedBody, p.contentType)
			return p.err
		}
		mediaType = mt
	}

	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case mediaType == "application/json" || (mediaType == "" && strings.HasPrefix(trimmed, "{")):
		p.jsonData = make(map[string]any)
		// Numbers stay as text so amounts reach decimal parsing undamaged.
		dec := json.NewDecoder(bytes.NewReader(p.body))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
		} else if err := dec.Decode(&struct{}{}); err != io.EOF {
			p.err = errors.New("invalid JSON body: unexpected data after object")
		}
	case mediaType == "application/x-www-form-urlencoded" || mediaType == "":
		p.formData, p.err = url.ParseQuery(trimmed)
		if p.err != nil {
			p.err = fmt.Errorf("invalid form body: %w", p.err)
		}
	default:
		p.err = fmt.Errorf("%w: %q", ErrUnsupportedBody, mediaType)
	}
	return p.err
}

// Get returns a field from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// DraftInput extracts the add-transaction fields.
func (p *RequestBodyParser) DraftInput() services.DraftInput {
	return services.DraftInput{
		Merchant: p.Get("merchant"),
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Status:   p.Get("status"),
		Type:     p.Get("type"),
	}
}

// stringValue renders JSON scalars as text. Numbers keep their literal form.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseMonths reads the months query parameter. An absent parameter yields
// fallback; anything other than an integer in 1..MaxMonthWindow is an error.
func ParseMonths(query url.Values, fallback int) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return services.ClampMonths(fallback, fallback), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > services.MaxMonthWindow {
		return 0, ErrInvalidMonths
	}
	return n, nil
}
