package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/ppetrovv/bisera/internal/usecase"
)

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in usecase.SignUpInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	c, err := s.accounts.SignUp(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"customer": c,
		"message":  "Изпратихме линк за потвърждение на имейла ви",
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	c, err := s.accounts.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	token, err := s.issueToken(c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "customer": c})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	c, err := s.accounts.Verify(r.Context(), r.PathValue("token"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	token, err := s.issueToken(c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "customer": c})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email        string `json:"email"`
		CaptchaToken string `json:"captchaToken"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	if err := s.accounts.RequestPasswordReset(r.Context(), in.Email, in.CaptchaToken); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ако имейлът съществува, изпратихме линк за нова парола",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	if err := s.accounts.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Паролата е обновена"})
}

const oauthStateCookie = "bisera_oauth_state"

func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		writeError(w, http.StatusNotImplemented, "Входът с Google не е конфигуриран")
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		writeError(w, http.StatusNotImplemented, "Входът с Google не е конфигуриран")
		return
	}
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "невалидно OAuth състояние")
		return
	}
	tok, err := s.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	res, err := s.oauth.Client(r.Context(), tok).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	defer res.Body.Close()
	var info struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		GivenName string `json:"given_name"`
		LastName  string `json:"family_name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := s.accounts.GoogleSignIn(r.Context(), info.ID, info.Email, info.GivenName, info.LastName)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	session, err := s.issueToken(c)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if s.frontendURL != "" {
		http.Redirect(w, r, s.frontendURL+"/auth/callback?token="+url.QueryEscape(session), http.StatusTemporaryRedirect)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": session, "customer": c})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	c, err := s.accounts.Customers.FindByID(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	var in usecase.ProfileUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	c, err := s.accounts.UpdateProfile(r.Context(), id, in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	if err := s.accounts.Delete(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	favs, err := s.favorites.ListByCustomer(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	var in struct {
		ProductID uuid.UUID `json:"productId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.ProductID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	if err := s.favorites.Add(r.Context(), id, in.ProductID); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	productID, err := parseID(r, "productId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	if err := s.favorites.Remove(r.Context(), id, productID); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
