package utils

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/spacesedan/commentscope/internal/errs"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// hosts serving /watch?v=<id> and /<kind>/<id> paths
var watchHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
}

var shortHosts = map[string]struct{}{
	"youtu.be":     {},
	"www.youtu.be": {},
}

var pathKinds = map[string]struct{}{
	"embed":  {},
	"shorts": {},
	"live":   {},
	"v":      {},
}

// ExtractVideoID pulls the video identifier out of a YouTube URL. It reports
// false for other hosts, malformed URLs and URLs without an identifier.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	var id string
	switch {
	case isShortHost(host):
		if len(segments) == 0 {
			return "", false
		}
		id = segments[0]
	case isWatchHost(host):
		if len(segments) == 1 && segments[0] == "watch" {
			id = u.Query().Get("v")
		} else if len(segments) >= 2 && isPathKind(segments[0]) {
			id = segments[1]
		}
	default:
		return "", false
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// ResolveVideoID accepts either a YouTube URL or a bare video ID.
func ResolveVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errs.Invalid("a video URL or ID is required")
	}

	if id, ok := ExtractVideoID(input); ok {
		return id, nil
	}

	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	return "", errs.Invalid("no video ID found in %q", input)
}

func isWatchHost(host string) bool {
	_, ok := watchHosts[host]
	return ok
}

func isShortHost(host string) bool {
	_, ok := shortHosts[host]
	return ok
}

func isPathKind(segment string) bool {
	_, ok := pathKinds[segment]
	return ok
}
