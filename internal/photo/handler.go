package photo

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amooora/users-service/internal/response"
	"github.com/amooora/users-service/internal/storage"
)

// maxUploadBytes bounds how much of a multipart body is buffered in memory.
const maxUploadBytes = 32 << 20 // 32 MiB

// Handler holds HTTP handlers for the global photo endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type uploadData struct {
	Message    string `json:"message" example:"photo uploaded"`
	ObjectName string `json:"objectName" example:"cat.jpg"`
}

type urlData struct {
	DownloadURL   string `json:"downloadUrl" example:"https://storage.example.com/photos/cat.jpg?X-Amz-..."`
	ExpiryMinutes int    `json:"expiryMinutes" example:"60"`
}

type existsData struct {
	Exists bool `json:"exists" example:"true"`
}

type infoData struct {
	Name         string `json:"name" example:"cat.jpg"`
	Size         int64  `json:"size" example:"102400"`
	ContentType  string `json:"contentType" example:"image/jpeg"`
	LastModified string `json:"lastModified" example:"2026-02-27T14:48:34Z"`
	ETag         string `json:"etag" example:"9b2cf535f27731c974343645a3985328"`
}

// Upload godoc
//
//	@Summary		Upload a photo
//	@Description	Uploads a photo from a multipart form. The object name defaults to the uploaded filename when objectName is not given.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"Photo file"
//	@Param			objectName	formData	string	false	"Explicit object name"
//	@Success		201	{object}	response.Envelope{data=uploadData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/photos/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	defer file.Close()

	objectName := r.FormValue("objectName")
	if objectName == "" {
		objectName = header.Filename
	}

	stored, err := h.svc.Upload(r.Context(), objectName, file, header.Size, contentTypeOf(header))
	if err != nil {
		log.Printf("photo: upload %q failed: %v", objectName, err)
		response.InternalError(w)
		return
	}

	response.Created(w, uploadData{Message: "photo uploaded", ObjectName: stored})
}

// Download godoc
//
//	@Summary		Download a photo
//	@Description	Streams the photo bytes inline with its content type.
//	@Tags			photos
//	@Produce		octet-stream
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{file}		file
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/photos/download/{photoName} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	servePhoto(w, r, h.svc, chi.URLParam(r, "photoName"))
}

// GetURL godoc
//
//	@Summary		Presign a download URL
//	@Description	Generates a time-limited presigned URL for the photo. The photo is not required to exist.
//	@Tags			photos
//	@Produce		json
//	@Param			photoName		path	string	true	"Photo name"
//	@Param			expiryMinutes	query	int		false	"URL validity in minutes"	default(60)
//	@Success		200	{object}	response.Envelope{data=urlData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/photos/url/{photoName} [get]
func (h *Handler) GetURL(w http.ResponseWriter, r *http.Request) {
	photoName := chi.URLParam(r, "photoName")

	expiry, err := expiryMinutes(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	url, err := h.svc.URL(r.Context(), photoName, expiry)
	if err != nil {
		log.Printf("photo: presign %q failed: %v", photoName, err)
		response.InternalError(w)
		return
	}

	response.OK(w, urlData{DownloadURL: url, ExpiryMinutes: expiry})
}

// List godoc
//
//	@Summary		List photos
//	@Description	Returns all image keys under the given prefix in backend enumeration order.
//	@Tags			photos
//	@Produce		json
//	@Param			prefix	query	string	false	"Key prefix"
//	@Success		200	{object}	response.Envelope{data=[]string}
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/photos/list [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		log.Printf("photo: list failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, keys)
}

// Exists godoc
//
//	@Summary		Check photo existence
//	@Tags			photos
//	@Produce		json
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{object}	response.Envelope{data=existsData}
//	@Router			/api/photos/exists/{photoName} [get]
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	exists := h.svc.Exists(r.Context(), chi.URLParam(r, "photoName"))
	response.OK(w, existsData{Exists: exists})
}

// Info godoc
//
//	@Summary		Get photo metadata
//	@Tags			photos
//	@Produce		json
//	@Param			photoName	path	string	true	"Photo name"
//	@Success		200	{object}	response.Envelope{data=infoData}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/photos/info/{photoName} [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	photoName := chi.URLParam(r, "photoName")

	meta, err := h.svc.Info(r.Context(), photoName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: stat %q failed: %v", photoName, err)
		response.InternalError(w)
		return
	}

	response.OK(w, photoInfoData(photoName, meta))
}

// servePhoto streams an object inline, releasing the storage stream on every
// exit path.
func servePhoto(w http.ResponseWriter, r *http.Request, svc *Service, key string) {
	stream, obj, err := svc.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: download %q failed: %v", key, err)
		response.InternalError(w)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", key))

	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("photo: streaming %q interrupted: %v", key, err)
	}
}

// formFile extracts the multipart "file" field, rejecting empty uploads.
func formFile(r *http.Request) (io.ReadCloser, *multipartHeader, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file field is required")
	}
	if header.Size == 0 {
		file.Close()
		return nil, nil, errors.New("file must not be empty")
	}
	return file, &multipartHeader{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// multipartHeader carries the bits of a multipart file header the handlers
// care about.
type multipartHeader struct {
	Filename    string
	Size        int64
	ContentType string
}

// contentTypeOf prefers the client-declared content type, falling back to
// the filename extension.
func contentTypeOf(h *multipartHeader) string {
	if h.ContentType != "" {
		return h.ContentType
	}
	return storage.ContentTypeForKey(h.Filename)
}

// expiryMinutes parses the expiryMinutes query parameter, defaulting to 60.
func expiryMinutes(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("expiryMinutes")
	if raw == "" {
		return 60, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("expiryMinutes must be a positive integer")
	}
	return n, nil
}

// photoInfoData shapes metadata for the info endpoints.
func photoInfoData(name string, meta storage.PhotoMetadata) infoData {
	return infoData{
		Name:         name,
		Size:         meta.Size,
		ContentType:  meta.ContentType,
		LastModified: meta.LastModified.UTC().Format(time.RFC3339),
		ETag:         meta.ETag,
	}
}
