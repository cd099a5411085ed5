package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/errs"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	tokens    tokenIssuer
}

func newAuthHandler(userRepo *database.UserRepo, tokens tokenIssuer) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		tokens:    tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login exchanges credentials for a signed access token. Wrong email and
// wrong password are deliberately indistinguishable.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || req.Password == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("email and password are required"))
			return
		}

		user, err := h.userRepo.FindByEmail(email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find user", "user", err))
			return
		}
		if user == nil || !user.IsActive || !user.CheckPassword(req.Password) {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, err := h.tokens.Issue(user)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, map[string]interface{}{
			"token": token,
			"user":  user,
		})
	}
}
