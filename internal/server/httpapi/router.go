package httpapi

import "net/http"

const maxBodySize = 8 << 20

func newRouter(h *handlers) http.Handler {
	mux := http.NewServeMux()

	// users
	mux.HandleFunc("POST /api/user/{$}", h.signup)
	mux.HandleFunc("GET /api/user/{$}", requireUser(h.me))
	mux.HandleFunc("POST /api/user/auth", h.login)
	mux.HandleFunc("GET /api/user/logout", h.logout)

	// mutable drawings
	mux.HandleFunc("GET /api/drawings/mutables", requireUser(h.listDrawings))
	mux.HandleFunc("POST /api/drawings/mutable", requireUser(h.createDrawing))
	mux.HandleFunc("GET /api/drawings/mutable/{id}", requireUser(h.getDrawing))
	mux.HandleFunc("PATCH /api/drawings/mutable/{id}", requireUser(h.updateDrawing))
	mux.HandleFunc("PUT /api/drawings/mutable/{id}", requireUser(h.updateDrawing))
	mux.HandleFunc("DELETE /api/drawings/mutable/{id}", requireUser(h.deleteDrawing))

	// immutable snapshots
	mux.HandleFunc("POST /api/drawings/immutable", h.createSnapshot)
	mux.HandleFunc("GET /api/drawings/immutable/{key}", h.getSnapshot)

	return withRequestID(withLogging(h.log)(h.authenticate(limitBody(maxBodySize, mux))))
}

func limitBody(n int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		next.ServeHTTP(w, r)
	})
}
