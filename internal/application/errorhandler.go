package application

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Messages surfaced by ErrorHandler.
const (
	MessageUnauthorized   = "Unauthorized"
	MessageSessionExpired = "Your session has expired, please sign in again."
	MessageFallback       = "Cannot process the request, see the error in your console."
)

// ParseErrorMessage classifies a failed response. 401 yields
// MessageUnauthorized; 400, 403 and 404 yield the body's "message" field;
// everything else yields "".
func ParseErrorMessage(resp model.Response) string {
	switch resp.Status {
	case http.StatusUnauthorized:
		return MessageUnauthorized
	case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
		return resp.Message()
	default:
		return ""
	}
}

// ErrorHandler turns failed panel responses into exactly one user message,
// ending the session on 401.
type ErrorHandler struct {
	session  *Session
	notifier driven.Notifier
	logger   *slog.Logger
}

// NewErrorHandler creates an ErrorHandler. notifier receives messages when a
// caller does not supply its own callback.
func NewErrorHandler(session *Session, notifier driven.Notifier, logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle logs resp, resolves its message and forwards it to onMessage (or the
// injected notifier when onMessage is nil). A 401 forwards
// MessageSessionExpired and terminates the session.
func (h *ErrorHandler) Handle(ctx context.Context, resp model.Response, onMessage func(string)) {
	if onMessage == nil {
		onMessage = h.notifier.Notify
	}

	h.logger.Error("panel request failed", "status", resp.Status, "body", string(resp.Body))

	msg := ParseErrorMessage(resp)
	if msg == MessageUnauthorized {
		onMessage(MessageSessionExpired)
		if err := h.session.HandleAuthError(ctx, resp); err != nil {
			h.logger.Error("session termination incomplete", "error", err)
		}
		return
	}

	if msg == "" {
		msg = MessageFallback
	}
	onMessage(msg)
}

// HandleSignIn reports a rejected sign-in attempt. A 401 there means the
// username or password was wrong: the panel's own message is forwarded (or
// MessageFallback when it sent none) and no session is terminated. Other
// statuses are resolved as in Handle.
func (h *ErrorHandler) HandleSignIn(ctx context.Context, resp model.Response, onMessage func(string)) {
	if resp.Status != http.StatusUnauthorized {
		h.Handle(ctx, resp, onMessage)
		return
	}
	if onMessage == nil {
		onMessage = h.notifier.Notify
	}

	h.logger.Warn("sign-in rejected", "status", resp.Status, "body", string(resp.Body))

	msg := resp.Message()
	if msg == "" {
		msg = MessageFallback
	}
	onMessage(msg)
}

// MakeErrorHandler returns a response callback bound to onMessage.
func (h *ErrorHandler) MakeErrorHandler(onMessage func(string)) func(context.Context, model.Response) {
	return func(ctx context.Context, resp model.Response) {
		h.Handle(ctx, resp, onMessage)
	}
}
