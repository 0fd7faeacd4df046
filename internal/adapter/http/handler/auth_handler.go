package handler

import (
	"context"
	"net/http"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/response"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/usecase"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

type AuthService interface {
	Signup(ctx context.Context, in usecase.SignupInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*domain.TokenPair, error)
	Login(ctx context.Context, in usecase.LoginInput) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type AuthHandler struct {
	auth   AuthService
	logger *logger.Logger
}

func NewAuthHandler(auth AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: log.Named("AuthHTTPHandler")}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type accessTokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req usecase.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	if err := h.auth.Signup(r.Context(), req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.Message(w, http.StatusOK, usecase.MsgOTPSent)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req usecase.VerifyOTPInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	pair, err := h.auth.VerifyOTP(r.Context(), req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, h.logger, err)
		return
	}
	token, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, accessTokenResponse{Token: token})
}
