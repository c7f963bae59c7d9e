package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"task-tracker-backend/internal/avatars"
	"task-tracker-backend/internal/httpx"
	"task-tracker-backend/internal/logger"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RegisterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		_, err := svc.Register(r.Context(), body.Username, body.Password)
		switch {
		case err == nil:
			httpx.Msg(w, "user created")
		case errors.Is(err, ErrDuplicateUser), errors.Is(err, ErrInvalidInput):
			httpx.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context(), err, "register")
			httpx.Error(w, http.StatusInternalServerError, "register failed")
		}
	}
}

// TokenHandler implements the OAuth2 password grant shape: form fields
// username and password in, {access_token, token_type} out.
func TokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid json")
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid form")
				return
			}
			body.Username = r.PostForm.Get("username")
			body.Password = r.PostForm.Get("password")
		}

		token, err := svc.Login(r.Context(), body.Username, body.Password)
		switch {
		case err == nil:
			httpx.JSON(w, http.StatusOK, map[string]string{
				"access_token": token,
				"token_type":   "bearer",
			})
		case errors.Is(err, ErrInvalidCredentials):
			httpx.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context(), err, "login")
			httpx.Error(w, http.StatusInternalServerError, "login failed")
		}
	}
}

func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, ErrUnauthorized.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"id":         u.ID,
			"username":   u.Username,
			"avatar_url": u.AvatarURL,
		})
	}
}

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

func UploadAvatarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, ErrUnauthorized.Error())
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, avatars.MaxSize+uploadOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httpx.Error(w, http.StatusBadRequest, avatars.ErrTooLarge.Error())
				return
			}
			httpx.Error(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		if header.Size > avatars.MaxSize {
			httpx.Error(w, http.StatusBadRequest, avatars.ErrTooLarge.Error())
			return
		}

		url, err := svc.SetAvatar(r.Context(), u, header.Header.Get("Content-Type"), file)
		switch {
		case err == nil:
			httpx.JSON(w, http.StatusOK, map[string]string{
				"avatar_url": url,
				"username":   u.Username,
			})
		case errors.Is(err, ErrUnsupportedMediaType), errors.Is(err, avatars.ErrTooLarge):
			httpx.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context(), err, "upload avatar")
			httpx.Error(w, http.StatusInternalServerError, "upload failed")
		}
	}
}
