// Package router dispatches a start location to the first matching
// handler. Patterns are regular expressions; named groups are handed to the
// handler.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Handler receives the named groups captured from the path.
type Handler func(ctx context.Context, params map[string]string)

type route struct {
	pattern *regexp.Regexp
	handler Handler
}

type Router struct {
	routes []route
}

func New() *Router {
	return &Router{}
}

// Add registers pattern. Routes are tried in the order they were added.
func (r *Router) Add(pattern *regexp.Regexp, h Handler) {
	r.routes = append(r.routes, route{pattern: pattern, handler: h})
}

// MustAdd compiles expr and registers it. It panics on an invalid
// expression.
func (r *Router) MustAdd(expr string, h Handler) {
	r.Add(regexp.MustCompile(expr), h)
}

// Handle strips trailing slashes from path and invokes the first matching
// handler. It reports whether a route matched.
func (r *Router) Handle(ctx context.Context, path string) bool {
	path = strings.TrimRight(path, "/")
	for _, rt := range r.routes {
		m := rt.pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(map[string]string)
		for i, name := range rt.pattern.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = m[i]
			}
		}
		rt.handler(ctx, params)
		return true
	}
	return false
}

func (r *Router) String() string {
	exprs := make([]string, len(r.routes))
	for i, rt := range r.routes {
		exprs[i] = rt.pattern.String()
	}
	return fmt.Sprintf("router%v", exprs)
}

// ShortKeyRoute matches a bare alphanumeric path segment, the locator of a
// shared snapshot.
const ShortKeyRoute = `^/(?P<shortkey>\w+)$`
