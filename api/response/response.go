package response

// ErrorResponse - тело любого ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse возвращается операциями без полезной нагрузки.
type SuccessResponse struct {
	Success bool `json:"success"`
}
