package handler

import (
	"net/http"

	"tush00nka/chattik/internal/model"
	"tush00nka/chattik/internal/pkg/httputils"
)

type UserResponse struct {
	User *model.User `json:"user"`
}

type ContactsResponse struct {
	Contacts []model.User `json:"contacts"`
}

// register: phone, name, avatar
func (h *Handler) register(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	user, err := h.users.Register(r.Context(), req.Phone, req.Name, req.Avatar)
	if err != nil {
		h.fail(w, ActionRegister, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *Handler) setOnlineStatus(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	if err := h.users.SetOnlineStatus(r.Context(), req.userID(), req.IsOnline); err != nil {
		h.fail(w, ActionSetOnlineStatus, err)
		return
	}
	httputils.ResponseSuccess(w)
}

func (h *Handler) searchUser(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	user, err := h.users.SearchByPhone(r.Context(), req.Phone)
	if err != nil {
		h.fail(w, ActionSearchUser, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	user, err := h.users.GetUser(r.Context(), req.userID())
	if err != nil {
		h.fail(w, ActionGetUser, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, UserResponse{User: user})
}

// getUsers - справочник всех пользователей, кроме вызывающего
func (h *Handler) getUsers(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	users, err := h.users.ListUsers(r.Context(), req.userID())
	if err != nil {
		h.fail(w, ActionGetUsers, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, ContactsResponse{Contacts: nonNil(users)})
}

func (h *Handler) getContacts(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	users, err := h.contacts.ListContacts(r.Context(), req.userID())
	if err != nil {
		h.fail(w, ActionGetContacts, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, ContactsResponse{Contacts: nonNil(users)})
}

func (h *Handler) addContact(w http.ResponseWriter, r *http.Request, req *actionRequest) {
	if err := h.contacts.AddContact(r.Context(), req.userID(), uint(req.ContactUserID)); err != nil {
		h.fail(w, ActionAddContact, err)
		return
	}
	httputils.ResponseSuccess(w)
}

// nonNil отдает [] вместо null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
