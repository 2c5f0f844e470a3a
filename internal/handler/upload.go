package handler

import (
	"errors"
	"net/http"
	"strings"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/httputils"
	"tush00nka/chattik/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// base64 раздувает файл в 4/3 раза. Двойной запас покрывает переносы строк
// (в JSON "\r\n" занимает 4 байта на каждые 76 символов), остальное идет на прочие поля.
const maxUploadBody = (model.MaxUploadSize+2)/3*4*2 + 64*1024

type UploadHandler struct {
	uploads service.UploadService
	logger  *zap.Logger
}

func NewUploadHandler(uploads service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

func (h *UploadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/upload", h.upload)
}

type UploadRequest struct {
	File string `json:"file"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// @Summary Загрузить файл
// @Description Принимает файл в base64 (можно с префиксом data URL), не больше 10 МБ
// @Tags upload
// @Accept json
// @Produce json
// @Param uploadData body UploadRequest true "Файл"
// @Success 200 {object} model.FileMetadata
// @Failure 400 {object} response.ErrorResponse
// @Failure 405 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputils.ResponseError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	var request UploadRequest
	if err := httputils.DecodeJSON(r, &request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputils.ResponseError(w, http.StatusBadRequest, service.ErrFileTooLarge.Error())
			return
		}
		httputils.ResponseError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if request.Name == "" {
		request.Name = "file"
	}
	if request.Type == "" {
		request.Type = "application/octet-stream"
	}

	meta, err := h.uploads.Upload(r.Context(), service.UploadInput{
		File:        request.File,
		Filename:    request.Name,
		ContentType: request.Type,
	})
	switch {
	case err == nil:
		httputils.ResponseJSON(w, http.StatusOK, meta)
	case errors.Is(err, service.ErrInvalidArgument):
		httputils.ResponseError(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, service.ErrFileTooLarge):
		httputils.ResponseError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("upload failed", zap.String("name", request.Name), zap.Error(err))
		httputils.ResponseError(w, http.StatusInternalServerError, "Upload failed: "+uploadCause(err))
	}
}

// uploadCause убирает из текста служебную обертку ErrStorage
func uploadCause(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrStorage.Error()+": ")
}
