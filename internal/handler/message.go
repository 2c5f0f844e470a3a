package handler

import (
	"net/http"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/httputils"
	"tush00nka/chattik/internal/service"
)

type MessagesResponse struct {
	Messages []model.Message `json:"messages"`
}

type AIResponse struct {
	Response string `json:"response"`
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	messages, err := h.messages.ListMessages(r.Context(), uint(req.ChatID), req.Limit)
	if err != nil {
		h.fail(w, ActionGetMessages, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, MessagesResponse{Messages: nonNil(messages)})
}

// sendMessage: sender_id по умолчанию - вызывающий; сообщения AI идут без отправителя
func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	sender := uint(req.SenderID)
	if sender == 0 && !req.IsAI {
		sender = req.userID()
	}

	result, err := h.messages.SendMessage(r.Context(), service.SendMessageInput{
		ChatID:      uint(req.ChatID),
		SenderID:    sender,
		Content:     req.Content,
		IsAI:        req.IsAI,
		ShouldReply: req.ShouldReply,
	})
	if err != nil {
		h.fail(w, ActionSendMessage, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, result)
}

// aiMessage всегда отвечает 200: сбои AI превращаются в фиксированный текст
func (h *Handler) aiMessage(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	httputils.ResponseJSON(w, http.StatusOK, AIResponse{Response: h.ai.Respond(r.Context(), req.Message)})
}
