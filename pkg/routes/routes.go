// Package routes organizes HTTP endpoints into prefixed groups that
// register themselves on a standard library mux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. The pattern is
// relative to the owning group's prefix.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a collection of routes under a common URL prefix. Groups may
// nest through Children.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register mounts the group and its children on the mux beneath base.
func Register(mux *http.ServeMux, base string, g Group) {
	prefix := base + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		Register(mux, prefix, child)
	}
}
