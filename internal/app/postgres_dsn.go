package app

import (
	"net/url"
	"strings"
)

const (
	binaryResultParam   = "disable_prepared_binary_result"
	maxTracedQueryBytes = 512
)

// postgresDSN is DB_URL as given, in either URL form or key=value form.
type postgresDSN string

// forDriver adds disable_prepared_binary_result=yes to URL-form DSNs unless the
// operator already set it. Key=value DSNs and unparsable input pass through.
func (d postgresDSN) forDriver(disableBinaryResults bool) string {
	raw := string(d)
	if !disableBinaryResults {
		return raw
	}
	u, ok := d.url()
	if !ok {
		return raw
	}
	params := u.Query()
	if params.Has(binaryResultParam) {
		return raw
	}
	params.Set(binaryResultParam, "yes")
	u.RawQuery = params.Encode()
	return u.String()
}

// database names the target database for logs and span attributes.
func (d postgresDSN) database() string {
	if u, ok := d.url(); ok {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}
	for _, pair := range strings.Fields(string(d)) {
		key, value, found := strings.Cut(pair, "=")
		if !found || key != "dbname" {
			continue
		}
		if name := strings.Trim(value, `"' `); name != "" {
			return name
		}
	}
	return ""
}

func (d postgresDSN) url() (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(string(d)))
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

// traceQuery collapses whitespace so multi-line SQL reads as one span attribute.
func traceQuery(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) > maxTracedQueryBytes {
		return flat[:maxTracedQueryBytes] + "..."
	}
	return flat
}
