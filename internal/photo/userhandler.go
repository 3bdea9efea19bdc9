package photo

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amooora/users-service/internal/response"
	"github.com/amooora/users-service/internal/storage"
)

// UserHandler holds HTTP handlers for the user-scoped photo endpoints under
// /api/users/{userId}/photos.
type UserHandler struct {
	svc *Service
}

// NewUserHandler creates a new user-scoped photo handler.
func NewUserHandler(svc *Service) *UserHandler {
	return &UserHandler{svc: svc}
}

type userUploadData struct {
	Message   string `json:"message" example:"photo uploaded"`
	UserID    string `json:"userId" example:"42"`
	PhotoName string `json:"photoName" example:"b1c2d3.jpg"`
	FullPath  string `json:"fullPath" example:"users/42/b1c2d3.jpg"`
}

type avatarUploadData struct {
	Message    string `json:"message" example:"avatar uploaded"`
	UserID     string `json:"userId" example:"42"`
	AvatarPath string `json:"avatarPath" example:"users/42/avatar.png"`
}

type userPhotoListData struct {
	UserID      string   `json:"userId" example:"42"`
	TotalPhotos int      `json:"totalPhotos" example:"2"`
	Photos      []string `json:"photos"`
}

type userPhotoURLsData struct {
	UserID        string    `json:"userId" example:"42"`
	TotalPhotos   int       `json:"totalPhotos" example:"2"`
	ExpiryMinutes int       `json:"expiryMinutes" example:"60"`
	Photos        []URLInfo `json:"photos"`
}

// Upload godoc
//
//	@Summary		Upload a user photo
//	@Description	Stores a photo under the user's namespace. A unique name is generated when photoName is not given.
//	@Tags			user-photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			userId		path		string	true	"User id"
//	@Param			file		formData	file	true	"Photo file"
//	@Param			photoName	formData	string	false	"Explicit photo name"
//	@Success		201	{object}	response.Envelope{data=userUploadData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos [post]
func (h *UserHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	file, header, err := formFile(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	defer file.Close()

	name, err := h.svc.UploadUserPhoto(r.Context(), userID, r.FormValue("photoName"),
		header.Filename, file, header.Size, contentTypeOf(header))
	if err != nil {
		log.Printf("photo: user %s upload failed: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.Created(w, userUploadData{
		Message:   "photo uploaded",
		UserID:    userID,
		PhotoName: name,
		FullPath:  ScopedKey(userID, name),
	})
}

// UploadAvatar godoc
//
//	@Summary		Upload a user avatar
//	@Description	Stores the avatar under the reserved "avatar" name with the upload's extension.
//	@Tags			user-photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			userId	path		string	true	"User id"
//	@Param			file	formData	file	true	"Avatar file"
//	@Success		201	{object}	response.Envelope{data=avatarUploadData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/avatar [post]
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	file, header, err := formFile(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	defer file.Close()

	key, err := h.svc.UploadAvatar(r.Context(), userID, header.Filename, file, header.Size, contentTypeOf(header))
	if err != nil {
		log.Printf("photo: user %s avatar upload failed: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.Created(w, avatarUploadData{
		Message:    "avatar uploaded",
		UserID:     userID,
		AvatarPath: key,
	})
}

// Download godoc
//
//	@Summary		Download a user photo
//	@Tags			user-photos
//	@Produce		octet-stream
//	@Param			userId		path	string	true	"User id"
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{file}		file
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/{photoName} [get]
func (h *UserHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	photoName := chi.URLParam(r, "photoName")

	servePhoto(w, r, h.svc, ScopedKey(userID, photoName))
}

// DownloadAvatar godoc
//
//	@Summary		Download a user avatar
//	@Description	Resolves the avatar by probing known extensions and streams the first match.
//	@Tags			user-photos
//	@Produce		octet-stream
//	@Param			userId	path	string	true	"User id"
//	@Success		200	{file}		file
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/avatar [get]
func (h *UserHandler) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	key, err := h.svc.ResolveAvatar(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "avatar not found")
		return
	}

	servePhoto(w, r, h.svc, key)
}

// PhotoURL godoc
//
//	@Summary		Presign a URL for a user photo
//	@Description	Unlike the global endpoint, the photo must exist.
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId			path	string	true	"User id"
//	@Param			photoName		path	string	true	"Photo name"
//	@Param			expiryMinutes	query	int		false	"URL validity in minutes"	default(60)
//	@Success		200	{object}	response.Envelope{data=urlData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/{photoName}/url [get]
func (h *UserHandler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	photoName := chi.URLParam(r, "photoName")

	expiry, err := expiryMinutes(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	url, err := h.svc.UserPhotoURL(r.Context(), userID, photoName, expiry)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: user %s presign %q failed: %v", userID, photoName, err)
		response.InternalError(w)
		return
	}

	response.OK(w, urlData{DownloadURL: url, ExpiryMinutes: expiry})
}

// List godoc
//
//	@Summary		List a user's photos
//	@Description	Returns bare photo names with the user prefix stripped, in backend enumeration order.
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId	path	string	true	"User id"
//	@Success		200	{object}	response.Envelope{data=userPhotoListData}
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	names, err := h.svc.ListUserPhotos(r.Context(), userID)
	if err != nil {
		log.Printf("photo: user %s list failed: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.OK(w, userPhotoListData{
		UserID:      userID,
		TotalPhotos: len(names),
		Photos:      names,
	})
}

// PhotoExists godoc
//
//	@Summary		Check a user photo's existence
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId		path	string	true	"User id"
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{object}	response.Envelope{data=existsData}
//	@Router			/api/users/{userId}/photos/{photoName}/exists [get]
func (h *UserHandler) PhotoExists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	photoName := chi.URLParam(r, "photoName")

	exists := h.svc.UserPhotoExists(r.Context(), userID, photoName)
	response.OK(w, existsData{Exists: exists})
}

// PhotoInfo godoc
//
//	@Summary		Get a user photo's metadata
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId		path	string	true	"User id"
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{object}	response.Envelope{data=infoData}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/{photoName}/info [get]
func (h *UserHandler) PhotoInfo(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	photoName := chi.URLParam(r, "photoName")

	meta, err := h.svc.Info(r.Context(), ScopedKey(userID, photoName))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: user %s stat %q failed: %v", userID, photoName, err)
		response.InternalError(w)
		return
	}

	response.OK(w, photoInfoData(photoName, meta))
}

// AllURLs godoc
//
//	@Summary		Presign URLs for all of a user's photos
//	@Description	One presigned URL per photo, preserving listing order.
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId			path	string	true	"User id"
//	@Param			expiryMinutes	query	int		false	"URL validity in minutes"	default(60)
//	@Success		200	{object}	response.Envelope{data=userPhotoURLsData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/urls [get]
func (h *UserHandler) AllURLs(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	expiry, err := expiryMinutes(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	urls, err := h.svc.AllUserPhotoURLs(r.Context(), userID, expiry)
	if err != nil {
		log.Printf("photo: user %s url batch failed: %v", userID, err)
		response.InternalError(w)
		return
	}

	response.OK(w, userPhotoURLsData{
		UserID:        userID,
		TotalPhotos:   len(urls),
		ExpiryMinutes: expiry,
		Photos:        urls,
	})
}

// Delete godoc
//
//	@Summary		Delete a user photo
//	@Tags			user-photos
//	@Produce		json
//	@Param			userId		path	string	true	"User id"
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/users/{userId}/photos/{photoName} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	photoName := chi.URLParam(r, "photoName")

	if err := h.svc.DeleteUserPhoto(r.Context(), userID, photoName); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: user %s delete %q failed: %v", userID, photoName, err)
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "photo deleted"})
}
