package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultPageLimit = 10

type pageLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type pageResponse struct {
	Items any        `json:"items"`
	Links []pageLink `json:"links,omitempty"`
}

// pageParams extracts the marker and limit query parameters. A missing
// limit defaults; a malformed one is reported as a bad request by the
// caller. Non-positive limits are rejected downstream by the paginator.
func pageParams(r *http.Request) (marker *string, limit int, err error) {
	if m := r.URL.Query().Get("marker"); m != "" {
		marker = &m
	}
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid limit %q", raw)
		}
	}
	return marker, limit, nil
}

// pageLinks renders prev/next cursors as navigation links. An absent
// cursor renders no link.
func pageLinks(r *http.Request, prev, next *string, limit int) []pageLink {
	var links []pageLink
	if prev != nil {
		links = append(links, pageLink{Rel: "prev", Href: pageHref(r, *prev, limit)})
	}
	if next != nil {
		links = append(links, pageLink{Rel: "next", Href: pageHref(r, *next, limit)})
	}
	return links
}

func pageHref(r *http.Request, marker string, limit int) string {
	return fmt.Sprintf("%s?marker=%s&limit=%d", r.URL.Path, url.QueryEscape(marker), limit)
}
