package handler

import (
	"net/http"

	"tush00nka/chattik/internal/pkg/httputils"
)

type PongResponse struct {
	Message string `json:"message"`
}

// Ping
// @Summary Пингануть сервер
// @Description Проверка живости сервера
// @Tags system
// @Produce json
// @Success 200 {object} PongResponse
// @Router /ping [get]
func Ping(w http.ResponseWriter, r *http.Request) {
	httputils.ResponseJSON(w, http.StatusOK, PongResponse{Message: "Pong"})
}
