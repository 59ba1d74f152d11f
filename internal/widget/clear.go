package widget

import (
	"context"

	"github.com/diogo/chatwidget/internal/dom"
	apierrors "github.com/diogo/chatwidget/internal/errors"
)

// HandleClear posts the clear form. On a 2xx response the conversation view
// is emptied and the message form's error decorations are stripped; any
// other outcome is logged and leaves the view untouched.
func (w *Widget) HandleClear(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()

	w.mu.Lock()
	form := w.clearForm
	if form == nil || form.Node != ev.Target {
		w.mu.Unlock()
		return apierrors.ErrFormNotFound
	}
	data := form.Data()
	action := form.Action()
	w.mu.Unlock()

	resp, err := w.client.Clear(ctx, action, data)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to clear chat")
		return err
	}
	defer resp.Body.Close()

	if !resp.OK() {
		err := apierrors.NewAPIErrorWithBody(resp.StatusCode, action, "clear conversation failed", readErrorBody(resp.Body))
		w.logger.Error().Int("status", resp.StatusCode).Str("reason", resp.Status).Msg("failed to clear chat")
		return err
	}

	w.mu.Lock()
	dom.RemoveChildren(w.messages)
	if w.form != nil {
		clearErrors(w.form.Node)
	}
	w.scroll.toBottom()
	state := w.state
	w.mu.Unlock()

	w.logger.Debug().Msg("conversation cleared")
	w.notify(ChangeMessages, state)
	return nil
}
