// Package errors defines the uniform error shape the maintops client
// surfaces to callers. The HTTP adapter is the only producer; no raw
// transport error escapes past it.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Fixed user-facing messages, matching the backend locale.
const (
	// MsgSessionExpired is returned after a failed token refresh.
	MsgSessionExpired = "登录已过期，请重新登录"
	// MsgUnauthorized is the generic 401 message.
	MsgUnauthorized = "未授权，请重新登录"
	// MsgNetwork is used when no response was received at all.
	MsgNetwork = "网络连接失败"
)

// StatusNetwork is the pseudo status for transport failures with no response.
const StatusNetwork = 0

// statusMessages are the generic fallbacks per status, in the backend locale.
var statusMessages = map[int]string{
	http.StatusUnauthorized:        MsgUnauthorized,
	http.StatusForbidden:           "无权限访问",
	http.StatusNotFound:            "资源不存在",
	http.StatusUnprocessableEntity: "数据验证失败",
	http.StatusInternalServerError: "服务器内部错误",
	StatusNetwork:                  MsgNetwork,
}

// StatusMessage returns the generic message for a status code, falling back
// to the standard HTTP status text.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

// APIError is the normalized {status, message, data} failure shape.
type APIError struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("maintops: api error (%d): %s", e.Status, e.Message)
}

// New creates an APIError.
func New(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

// SessionExpired builds the terminal authorization failure returned when a
// 401 could not be recovered by a token refresh.
func SessionExpired() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: MsgSessionExpired}
}

// Network builds the transport-failure error (status 0, generic message).
func Network(err error) *APIError {
	msg := MsgNetwork
	if err != nil {
		msg = fmt.Sprintf("%s: %v", MsgNetwork, err)
	}
	return &APIError{Status: StatusNetwork, Message: msg}
}

// serverError mirrors the error bodies the backend emits alongside non-200
// transport statuses.
type serverError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// FromResponse normalizes a non-success HTTP response body into an APIError.
// The server-supplied detail or message field wins over the generic fallback.
func FromResponse(status int, body []byte, fallback string) *APIError {
	apiErr := &APIError{Status: status, Message: fallback}

	var srv serverError
	if err := json.Unmarshal(body, &srv); err == nil {
		switch {
		case srv.Detail != "":
			apiErr.Message = srv.Detail
		case srv.Message != "":
			apiErr.Message = srv.Message
		}
		apiErr.Data = srv.Data
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// FromEnvelope normalizes an application-level failure (transport 200 but
// envelope code != 200).
func FromEnvelope(code int, message string, data json.RawMessage) *APIError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &APIError{Status: code, Message: message, Data: data}
}

// IsAPIError reports whether err carries the normalized shape.
func IsAPIError(err error) bool {
	_, ok := err.(*APIError)
	return ok
}

// IsSessionExpired reports whether err is the terminal session-expired failure.
func IsSessionExpired(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized && apiErr.Message == MsgSessionExpired
}

// IsUnauthorized reports whether err is any 401 failure.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsNetwork reports whether err is a transport failure with no response.
func IsNetwork(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == StatusNetwork
}
