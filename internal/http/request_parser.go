// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data:
// query filters, JSON or form bodies, and invoice uploads.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"monotributo/internal/core"
	"monotributo/internal/importer"
)

const (
	// MaxUploadBytes caps an import file.
	MaxUploadBytes = 10 << 20
	// maxFormBytes caps JSON and form bodies.
	maxFormBytes = 1 << 20
)

var ErrEmptyUpload = errors.New("empty upload")

// ParseDirectionParam reads ?direction=, defaulting to sales.
func ParseDirectionParam(query url.Values) (core.Direction, error) {
	v := strings.TrimSpace(query.Get("direction"))
	if v == "" {
		return core.Sale, nil
	}
	return core.ParseDirection(v)
}

// ParsePeriodParams reads ?start=YYYY-MM&end=YYYY-MM. Both absent yields the
// zero period, which the services read as the current year.
func ParsePeriodParams(query url.Values) (core.Period, error) {
	p := core.Period{
		Start: strings.TrimSpace(query.Get("start")),
		End:   strings.TrimSpace(query.Get("end")),
	}
	if p == (core.Period{}) {
		return p, nil
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// ParseIntParam returns def when key is absent and an error when it is not
// a number.
func ParseIntParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 1 MiB of the body once and keeps it
// for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSON() || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed data.
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

// IsJSON reports whether the declared content type is JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return strings.HasPrefix(p.contentType, "application/json")
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Upload is an import file read from the request.
type Upload struct {
	Data     []byte
	Filename string
	Format   importer.Format
}

// ReadUpload accepts either a multipart form with a "file" field or the
// raw file as the body. The format comes from ?format= or, failing that,
// the uploaded file name.
func ReadUpload(w http.ResponseWriter, r *http.Request) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	var up Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return Upload{}, fmt.Errorf("parse multipart: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return Upload{}, fmt.Errorf("read file field: %w", err)
		}
		defer file.Close()
		up.Filename = header.Filename
		if up.Data, err = io.ReadAll(file); err != nil {
			return Upload{}, fmt.Errorf("read upload: %w", err)
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return Upload{}, fmt.Errorf("read upload: %w", err)
		}
		up.Data = data
	}
	if len(up.Data) == 0 {
		return Upload{}, ErrEmptyUpload
	}

	var err error
	if f := strings.TrimSpace(r.URL.Query().Get("format")); f != "" {
		up.Format, err = importer.ParseFormat(f)
	} else if up.Filename != "" {
		up.Format, err = importer.FormatFromFilename(up.Filename)
	} else {
		err = fmt.Errorf("%w: missing format parameter", importer.ErrUnknownFormat)
	}
	if err != nil {
		return Upload{}, err
	}
	return up, nil
}
