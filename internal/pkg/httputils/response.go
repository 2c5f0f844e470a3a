package httputils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tush00nka/chattik/api/response"

	"go.uber.org/zap"
)

func ResponseError(w http.ResponseWriter, errorCode int, errorMessage string) {
	ResponseJSON(w, errorCode, response.ErrorResponse{
		Error: errorMessage,
	})
}

func ResponseSuccess(w http.ResponseWriter) {
	ResponseJSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

func ResponseJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// заголовок уже отправлен, остается только залогировать
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

// DecodeJSON читает тело запроса. Пустое тело не считается ошибкой.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
