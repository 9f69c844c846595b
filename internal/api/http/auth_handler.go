package http

import (
	"net/http"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type signupRequest struct {
	Kind domain.SessionKind `json:"kind"`
	domain.SignupRequest
}

type loginRequest struct {
	Kind       domain.SessionKind `json:"kind"`
	Email      string             `json:"email"`
	Password   string             `json:"password"`
	RememberMe bool               `json:"remember_me"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile *domain.Profile `json:"profile"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		token   string
		profile *domain.Profile
		err     error
	)
	switch req.Kind {
	case domain.SessionCustomer, "":
		token, profile, err = h.authSvc.SignupCustomer(r.Context(), req.SignupRequest)
	case domain.SessionStaff:
		token, profile, err = h.authSvc.SignupStaff(r.Context(), req.SignupRequest)
	default:
		err = badRequest("Unknown account type")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Kind == "" {
		req.Kind = domain.SessionCustomer
	}
	token, profile, err := h.authSvc.Login(r.Context(), req.Kind, req.Email, req.Password, req.RememberMe)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) SavedEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.authSvc.SavedEmail(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}
