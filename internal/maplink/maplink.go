// Package maplink builds deep-link URLs into an external mapping service for
// an order's address. The links are fire-and-forget: the app never consumes a
// response, so nothing is fetched here.
package maplink

import (
	"errors"
	"net/url"
	"strings"
)

var ErrEmptyAddress = errors.New("address is empty")

const defaultBaseURL = "https://www.google.com/maps/search/?api=1"

type Builder struct {
	BaseURL string
}

// BuildQuery joins the school name and address into a single map query.
func BuildQuery(schoolName, address string) string {
	schoolName = strings.TrimSpace(schoolName)
	address = strings.TrimSpace(address)
	parts := []string{}
	if schoolName != "" {
		parts = append(parts, schoolName)
	}
	if address != "" {
		parts = append(parts, address)
	}
	return strings.Join(parts, ", ")
}

// Link returns the navigation URL for the given school and address.
func (b Builder) Link(schoolName, address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrEmptyAddress
	}
	base := b.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	query := BuildQuery(schoolName, address)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "query=" + url.QueryEscape(query), nil
}
