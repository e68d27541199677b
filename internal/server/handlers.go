package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/middleware"
	"github.com/MrEthical07/bloombox/users"
	"github.com/gorilla/mux"
)

type messageResponse struct {
	Message string `json:"message"`
}

type signupResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	*bloombox.LoginResult
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

var errEmptyBody = errors.New("request body required")

// decode reads one JSON object from the request body. Unknown fields are
// rejected.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return fmt.Errorf("%w: %v", bloombox.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ready(r.Context()); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req bloombox.SignupRequest
	if err := s.decode(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	user, err := s.engine.Signup(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, signupResponse{
		Message: "Account created. Check your email to verify your account.",
		User:    user,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req bloombox.LoginRequest
	if err := s.decode(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	res, err := s.engine.Login(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, loginResponse{Message: "Login successful", LoginResult: res})
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	access, err := s.engine.RefreshAccess(r.Context(), claims)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := s.engine.Logout(r.Context(), claims); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) logoutRefresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := s.engine.RevokeToken(r.Context(), claims); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Message: "Refresh token revoked"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, bloombox.ErrUserNotFound)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.VerifyEmail(r.Context(), mux.Vars(r)["token"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Message: "Account verified successfully"})
}

func (s *Server) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req bloombox.EmailRequest
	if err := s.decode(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := s.engine.ResendVerification(r.Context(), req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "If the account exists and is not verified, a new verification email has been sent",
	})
}

func (s *Server) passwordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req bloombox.EmailRequest
	if err := s.decode(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := s.engine.RequestPasswordReset(r.Context(), req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "Please check your email for instructions to reset your password",
	})
}

func (s *Server) passwordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req bloombox.PasswordResetConfirmRequest
	if err := s.decode(w, r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := s.engine.ConfirmPasswordReset(r.Context(), mux.Vars(r)["token"], req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListUsers(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteUser(r.Context(), mux.Vars(r)["uid"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
