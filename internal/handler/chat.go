package handler

import (
	"net/http"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/httputils"
	"tush00nka/chattik/internal/service"
)

type ChatsResponse struct {
	Chats []model.ChatSummary `json:"chats"`
}

type ChatResponse struct {
	ChatID uint        `json:"chat_id"`
	Chat   *model.Chat `json:"chat,omitempty"`
}

type GroupResponse struct {
	GroupID uint `json:"group_id"`
	ChatID  uint `json:"chat_id"`
}

func (h *Handler) getChats(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	chats, err := h.chats.ListChats(r.Context(), req.userID())
	if err != nil {
		h.fail(w, ActionGetChats, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, ChatsResponse{Chats: nonNil(chats)})
}

// createChat с contact_id находит или создает личный чат,
// без него работает старый вариант: name, is_group, members.
func (h *Handler) createChat(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	var (
		chat *model.Chat
		err  error
	)
	if req.ContactID != 0 {
		chat, err = h.chats.CreatePrivateChat(r.Context(), req.userID(), uint(req.ContactID))
	} else {
		chat, err = h.chats.CreateGenericChat(r.Context(), req.Name, req.IsGroup, ids(req.Members))
	}
	if err != nil {
		h.fail(w, ActionCreateChat, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, ChatResponse{ChatID: chat.ID, Chat: chat})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	creator := uint(req.CreatedBy)
	if creator == 0 {
		creator = req.userID()
	}

	group, chat, err := h.chats.CreateGroup(r.Context(), service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
		CreatorID:   creator,
		MemberIDs:   ids(req.MemberIDs),
	})
	if err != nil {
		h.fail(w, ActionCreateGroup, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, GroupResponse{GroupID: group.ID, ChatID: chat.ID})
}

func (h *Handler) createAIChat(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	chat, err := h.chats.CreateAIChat(r.Context(), req.userID())
	if err != nil {
		h.fail(w, ActionCreateAIChat, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, ChatResponse{ChatID: chat.ID})
}
