// Package server defines the request and response frame types exchanged
// between clients and the relay, shared across transports.
package server

import "time"

// Request kind constants for the client-to-server frame types.
const (
	RequestAuth           = "auth"
	RequestMessage        = "message"
	RequestJoinRoom       = "join_room"
	RequestListRooms      = "list_rooms"
	RequestPrivateMessage = "private_message"
	RequestUploadFile     = "upload_file"
)

// Response kind constants for the server-to-client frame types.
const (
	ResponseAuthSuccess    = "auth_success"
	ResponseAuthError      = "auth_error"
	ResponseMessage        = "message"
	ResponseSystem         = "system"
	ResponsePrivateMessage = "private_message"
	ResponseRoomList       = "room_list"
	ResponseRoomChanged    = "room_changed"
	ResponseFileUpload     = "file_upload"
	ResponseError          = "error"
)

// systemUsername is the sender name attached to system notices.
const systemUsername = "System"

// Request represents a single inbound frame. The Type field selects the
// variant; the remaining fields are populated only for the kinds that
// require them.
type Request struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
	Room     string `json:"room,omitempty"`
	Target   string `json:"target,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Message is the canonical broadcastable message. Room history stores it
// sender-neutral: IsSelf is nil until a per-recipient copy is stamped at
// delivery time.
type Message struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Body      string `json:"message"`
	Target    string `json:"target,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	IsSelf    *bool  `json:"is_self,omitempty"`
}

// withSelf returns a per-recipient copy of m with the is_self flag set.
func withSelf(m Message, self bool) Message {
	m.IsSelf = &self
	return m
}

// stamp fills in the timestamp if the message does not carry one yet.
func (m *Message) stamp() {
	if m.Timestamp == "" {
		m.Timestamp = time.Now().Format(time.RFC3339)
	}
}

// systemNotice builds a system message with the given body.
func systemNotice(body string) Message {
	return Message{Type: ResponseSystem, Username: systemUsername, Body: body}
}

// authSuccessResponse is the reply to a successful authentication.
type authSuccessResponse struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// authErrorResponse is the reply to a rejected authentication attempt.
type authErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// roomListResponse carries the names of every room known to the registry.
type roomListResponse struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

// roomChangedResponse acknowledges a completed room switch.
type roomChangedResponse struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Message string `json:"message"`
}

// errorResponse is the generic reply for malformed or failed requests.
type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newAuthSuccess(username string) authSuccessResponse {
	return authSuccessResponse{
		Type:     ResponseAuthSuccess,
		Message:  "Welcome " + username + "!",
		Username: username,
	}
}

func newAuthError(message string) authErrorResponse {
	return authErrorResponse{Type: ResponseAuthError, Message: message}
}

func newRoomList(rooms []string) roomListResponse {
	return roomListResponse{Type: ResponseRoomList, Rooms: rooms}
}

func newRoomChanged(room string) roomChangedResponse {
	return roomChangedResponse{
		Type:    ResponseRoomChanged,
		Room:    room,
		Message: "You joined room: " + room,
	}
}

func newError(message string) errorResponse {
	return errorResponse{Type: ResponseError, Message: message}
}
