package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amooora/users-service/internal/response"
)

// Handler holds HTTP handlers for user CRUD endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]User}
//	@Failure		500	{object}	response.Envelope
//	@Router			/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("user: list failed: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, users)
}

// Get godoc
//
//	@Summary		Get a user by id
//	@Tags			users
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		log.Printf("user: get %d failed: %v", id, err)
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}

// GetByEmail godoc
//
//	@Summary		Get a user by email
//	@Tags			users
//	@Produce		json
//	@Param			email	path	string	true	"Email address"
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/email/{email} [get]
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	u, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		log.Printf("user: get by email failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}

// Create godoc
//
//	@Summary		Create a user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body	User	true	"User payload"
//	@Success		201	{object}	response.Envelope{data=User}
//	@Failure		400	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), &u)
	if err != nil {
		h.writeError(w, err, "create")
		return
	}

	response.Created(w, created)
}

// Update godoc
//
//	@Summary		Update a user
//	@Description	Full-record update. The path id wins over any id in the payload.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int		true	"User id"
//	@Param			request	body	User	true	"User payload"
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, &u)
	if err != nil {
		h.writeError(w, err, "update")
		return
	}

	response.OK(w, updated)
}

// Delete godoc
//
//	@Summary		Delete a user
//	@Tags			users
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		log.Printf("user: delete %d failed: %v", id, err)
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "user deleted"})
}

// writeError maps service errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalid):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, ErrAlreadyExists):
		response.Conflict(w, "email already registered")
	default:
		log.Printf("user: %s failed: %v", op, err)
		response.InternalError(w)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
