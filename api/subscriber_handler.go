package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
)

type subscriberHandler struct {
	responder      Responder
	logger         zerolog.Logger
	subscriberRepo *database.SubscriberRepo
}

func newSubscriberHandler(subscriberRepo *database.SubscriberRepo) subscriberHandler {
	logger := log.With().Str("handlerName", "subscriberHandler").Logger()

	return subscriberHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		subscriberRepo: subscriberRepo,
	}
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// subscribe registers an email address for publish announcements.
// Re-subscribing an inactive address reactivates it instead of failing
// on the unique email index.
func (h subscriberHandler) subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("email", "not a valid email address"))
			return
		}

		existing, err := h.subscriberRepo.FindByEmail(email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find subscriber", "subscriber", err))
			return
		}
		if existing != nil {
			if existing.IsActive {
				h.responder.WriteError(w, errs.NewConflictError("email is already subscribed"))
				return
			}
			existing.IsActive = true
			if req.Name != "" {
				existing.Name = req.Name
			}
			if err := h.subscriberRepo.Update(existing); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("reactivate subscriber", "subscriber", err))
				return
			}
			h.responder.WriteData(w, http.StatusOK, existing)
			return
		}

		subscriber := models.Subscriber{
			Email:    email,
			Name:     req.Name,
			IsActive: true,
		}
		if err := h.subscriberRepo.Add(&subscriber); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create subscriber", "subscriber", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, subscriber)
	}
}

// unsubscribe deactivates the subscriber holding the opaque token from
// the email footer link.
func (h subscriberHandler) unsubscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if token == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing token"))
			return
		}

		subscriber, err := h.subscriberRepo.FindByToken(token)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find subscriber", "subscriber", err))
			return
		}
		if subscriber == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("subscription not found"))
			return
		}

		if err := h.subscriberRepo.Deactivate(token); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("deactivate subscriber", "subscriber", err))
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "unsubscribed successfully")
	}
}
