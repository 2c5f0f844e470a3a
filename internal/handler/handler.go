package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tush00nka/chattik/internal/pkg/httputils"
	"tush00nka/chattik/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UserIDHeader - заголовок с id вызывающего пользователя
const UserIDHeader = "X-User-Id"

const (
	msgInvalidRequest   = "Invalid request"
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
)

type actionFunc func(w http.ResponseWriter, r *http.Request, req *actionRequest)

// Handler раздает действия /api и /messages по сервисам
type Handler struct {
	users    service.UserService
	contacts service.ContactService
	chats    service.ChatService
	messages service.MessageService
	ai       service.AIService
	logger   *zap.Logger

	actions map[Action]actionFunc
}

func NewHandler(
	users service.UserService,
	contacts service.ContactService,
	chats service.ChatService,
	messages service.MessageService,
	ai service.AIService,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		users:    users,
		contacts: contacts,
		chats:    chats,
		messages: messages,
		ai:       ai,
		logger:   logger,
	}

	h.actions = map[Action]actionFunc{
		ActionRegister:        h.register,
		ActionSetOnlineStatus: h.setOnlineStatus,
		ActionSearchUser:      h.searchUser,
		ActionGetUser:         h.getUser,
		ActionGetUsers:        h.getUsers,
		ActionGetContacts:     h.getContacts,
		ActionAddContact:      h.addContact,
		ActionGetChats:        h.getChats,
		ActionCreateChat:      h.createChat,
		ActionCreateGroup:     h.createGroup,
		ActionCreateAIChat:    h.createAIChat,
		ActionGetMessages:     h.getMessages,
		ActionSendMessage:     h.sendMessage,
		ActionAIMessage:       h.aiMessage,
	}
	return h
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api", h.dispatch("path", ActionUnknown))
	router.HandleFunc("/messages", h.dispatch("action", ActionGetChats))
}

// ID принимает идентификатор и числом, и строкой: клиенты шлют оба варианта
type ID uint

func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = ID(v)
	return nil
}

func ids(values []ID) []uint {
	out := make([]uint, 0, len(values))
	for _, v := range values {
		out = append(out, uint(v))
	}
	return out
}

// actionRequest - объединение полей всех действий. GET заполняет его из query.
type actionRequest struct {
	Action string `json:"action"`
	UserID ID     `json:"user_id"`

	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	IsOnline bool   `json:"is_online"`

	ChatID      ID     `json:"chat_id"`
	SenderID    ID     `json:"sender_id"`
	Content     string `json:"content"`
	IsAI        bool   `json:"is_ai"`
	ShouldReply bool   `json:"should_reply"`
	Limit       int    `json:"limit"`

	ContactID     ID `json:"contact_id"`
	ContactUserID ID `json:"contact_user_id"`

	Description string `json:"description"`
	CreatedBy   ID     `json:"created_by"`
	MemberIDs   []ID   `json:"member_ids"`
	Members     []ID   `json:"members"`
	IsGroup     bool   `json:"is_group"`

	Message string `json:"message"`

	caller uint
}

// userID - явный user_id или вызывающий из заголовка
func (req *actionRequest) userID() uint {
	if req.UserID != 0 {
		return uint(req.UserID)
	}
	return req.caller
}

// Dispatch
// @Summary Действия мессенджера
// @Description GET: get_chats, get_messages, get_contacts, get_users, get_user, search_user.
// @Description POST: register, set_online_status, send_message, create_chat, create_group, create_ai_chat, ai_message, add_contact.
// @Description На /api имя действия для GET передается в ?path=, на /messages - в ?action= (по умолчанию get_chats).
// @Tags messenger
// @Accept json
// @Produce json
// @Param action query string false "Действие"
// @Param user_id query int false "ID пользователя"
// @Param chat_id query int false "ID чата"
// @Param phone query string false "Телефон"
// @Param X-User-Id header int false "ID вызывающего пользователя"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 405 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /messages [get]
// @Router /messages [post]
// @Router /api [get]
// @Router /api [post]
func (h *Handler) dispatch(param string, fallback Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			req    actionRequest
			action Action
			err    error
		)

		switch r.Method {
		case http.MethodGet:
			action = fallback
			if v := r.URL.Query().Get(param); v != "" {
				action = ParseAction(v)
			}
			err = queryRequest(r, &req)
		case http.MethodPost:
			err = httputils.DecodeJSON(r, &req)
			name := req.Action
			if name == "" {
				name = r.URL.Query().Get(param)
			}
			action = ParseAction(name)
		default:
			httputils.ResponseError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}

		if err != nil {
			h.logger.Debug("bad request", zap.String("path", r.URL.Path), zap.Error(err))
			httputils.ResponseError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}

		fn, ok := h.actions[action]
		if !ok || action.Method() != r.Method {
			httputils.ResponseError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}

		if req.caller, err = headerUserID(r); err != nil {
			httputils.ResponseError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}

		fn(w, r, &req)
	}
}

func queryRequest(r *http.Request, req *actionRequest) error {
	q := r.URL.Query()

	req.Phone = q.Get("phone")

	var err error
	if req.UserID, err = queryID(q.Get("user_id")); err != nil {
		return err
	}
	if req.ChatID, err = queryID(q.Get("chat_id")); err != nil {
		return err
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid limit %q", v)
		}
	}
	return nil
}

func queryID(s string) (ID, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(v), nil
}

func headerUserID(r *http.Request) (uint, error) {
	id, err := queryID(strings.TrimSpace(r.Header.Get(UserIDHeader)))
	return uint(id), err
}

// fail переводит ошибку сервиса в HTTP-ответ
func (h *Handler) fail(w http.ResponseWriter, action Action, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		httputils.ResponseError(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, service.ErrFileTooLarge):
		httputils.ResponseError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrChatNotFound):
		httputils.ResponseError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("action failed", zap.Stringer("action", action), zap.Error(err))
		httputils.ResponseError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func errorMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrInvalidArgument.Error()+": ")
}
