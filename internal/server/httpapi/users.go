package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Account errors are reported with status 200 and an error message.
func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.users.Signup(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, emptyResponse{})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusOK, "User already exists")
	case errors.Is(err, common.ErrorInvalidEmail):
		writeError(w, http.StatusOK, "Invalid email")
	case errors.Is(err, common.ErrorPasswordTooShort):
		writeError(w, http.StatusOK, "Password too short")
	default:
		h.log.Error(r.Context(), "signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusOK, "User not found")
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.users.SessionValidity().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusAccepted, emptyResponse{})
}

// me is the identity probe; anonymous callers get 401 from requireUser.
func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	user, _, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if _, claims, ok := userFromContext(r.Context()); ok {
		if err := h.users.Logout(r.Context(), claims); err != nil {
			h.log.Warn(r.Context(), "session revocation failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, emptyResponse{})
}
