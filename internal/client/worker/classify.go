// Package worker implements the request-interception layer: it classifies
// every outgoing resource request, applies a per-class cache policy against
// named partitions, and exposes the service-worker-style lifecycle
// (install, activate, request, push) behind a small message-passing runtime.
package worker

import (
	"net/url"
	"path"
	"strings"
)

// Class is the resource class a request falls into. Every request maps to
// exactly one class.
type Class int

const (
	// ClassBypass requests go straight to the network: non-HTTP schemes and
	// requests the application marks as transient.
	ClassBypass Class = iota
	// ClassAPI requests serve story or notification data.
	ClassAPI
	// ClassImage requests expect binary image responses.
	ClassImage
	// ClassStatic covers everything else: page shell and app assets.
	ClassStatic
)

func (c Class) String() string {
	switch c {
	case ClassAPI:
		return "api"
	case ClassImage:
		return "image"
	case ClassStatic:
		return "static"
	default:
		return "bypass"
	}
}

// Request describes one intercepted resource request.
type Request struct {
	URL         string
	Method      string
	Destination string // declared response kind, e.g. "image"
	Navigate    bool   // full-page navigation
	Transient   bool   // dev-tooling and similar; never cached
}

// Key is the request identity used for cache lookups. The method is part of
// the key so a POST can never shadow a cached GET for the same URL.
func (r Request) Key() string {
	method := r.Method
	if method == "" {
		method = "GET"
	}
	return method + " " + r.URL
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true, ".webp": true,
}

// Classify assigns a request to exactly one resource class.
func Classify(r Request) Class {
	if r.Transient {
		return ClassBypass
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ClassBypass
	}

	if strings.Contains(u.Path, "/stories") || strings.Contains(u.Path, "/notifications") {
		return ClassAPI
	}

	if r.Destination == "image" || imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return ClassImage
	}

	return ClassStatic
}
