package handler

import (
	"net/http"
	"strings"
)

// Action - операция диспетчера. Набор закрыт: неизвестная строка дает ActionUnknown.
type Action int

const (
	ActionUnknown Action = iota
	ActionRegister
	ActionSetOnlineStatus
	ActionSearchUser
	ActionGetUser
	ActionGetChats
	ActionGetMessages
	ActionGetContacts
	ActionGetUsers
	ActionSendMessage
	ActionCreateChat
	ActionCreateGroup
	ActionCreateAIChat
	ActionAIMessage
	ActionAddContact
)

var actionNames = map[Action]string{
	ActionRegister:        "register",
	ActionSetOnlineStatus: "set_online_status",
	ActionSearchUser:      "search_user",
	ActionGetUser:         "get_user",
	ActionGetChats:        "get_chats",
	ActionGetMessages:     "get_messages",
	ActionGetContacts:     "get_contacts",
	ActionGetUsers:        "get_users",
	ActionSendMessage:     "send_message",
	ActionCreateChat:      "create_chat",
	ActionCreateGroup:     "create_group",
	ActionCreateAIChat:    "create_ai_chat",
	ActionAIMessage:       "ai_message",
	ActionAddContact:      "add_contact",
}

// старые значения ?path= и прочие синонимы
var actionAliases = map[string]Action{
	"update_status": ActionSetOnlineStatus,
	"chats":         ActionGetChats,
	"messages":      ActionGetMessages,
	"contacts":      ActionGetContacts,
	"users":         ActionGetUsers,
	"user":          ActionGetUser,
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames)+len(actionAliases))
	for a, name := range actionNames {
		m[name] = a
	}
	for alias, a := range actionAliases {
		m[alias] = a
	}
	return m
}()

func ParseAction(s string) Action {
	if a, ok := actionsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a
	}
	return ActionUnknown
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Method возвращает HTTP-метод, которым вызывается действие
func (a Action) Method() string {
	switch a {
	case ActionSearchUser, ActionGetUser, ActionGetChats, ActionGetMessages, ActionGetContacts, ActionGetUsers:
		return http.MethodGet
	case ActionUnknown:
		return ""
	default:
		return http.MethodPost
	}
}
