package widget

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/diogo/chatwidget/internal/dom"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// maxErrorBody caps how much of a failed response is read for diagnostics
const maxErrorBody = 4096

// HandleSubmit runs one submission cycle for the message form: optimistic
// append, request, then stream, form swap or failure notice depending on
// the response. The send control is disabled for the whole cycle; a submit
// arriving meanwhile returns ErrSubmissionInFlight and changes nothing.
// Every path leaves the view consistent; the returned error is diagnostic.
func (w *Widget) HandleSubmit(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()

	w.mu.Lock()
	form := w.form
	if form == nil || form.Node != ev.Target {
		w.mu.Unlock()
		return apierrors.ErrFormNotFound
	}
	send := form.SubmitControl(sendClass)
	if w.state.InFlight() || (send != nil && dom.HasAttr(send, "disabled")) {
		w.mu.Unlock()
		w.logger.Debug().Msg("submit ignored: submission in flight")
		return apierrors.ErrSubmissionInFlight
	}
	if send != nil {
		dom.SetAttr(send, "disabled", "")
	}
	w.setState(StateSubmitting)

	data := form.Data()
	user := newMessageElement(data.Get(messageField), models.RoleUser)
	dom.Append(w.messages, user)
	w.scroll.toBottom()

	form.Reset()
	clearErrors(form.Node)
	autoResize(form)

	placeholder := newMessageElement(models.PlaceholderText, models.RoleAssistant)
	dom.SetAttr(placeholder, "aria-busy", "true")
	dom.Append(w.messages, placeholder)
	w.scroll.toBottom()
	action := form.Action()
	w.mu.Unlock()

	w.notify(ChangeMessages, StateSubmitting)
	defer w.finishSubmit(send)

	resp, err := w.client.Submit(ctx, action, data)
	if err != nil {
		w.fail(placeholder, err)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.OK():
		w.transition(StateStreaming)
		if err := w.consumeStream(ctx, resp.Body, placeholder); err != nil {
			w.fail(placeholder, err)
			return err
		}
		w.logger.Debug().Msg("reply streamed")
		return nil

	case resp.StatusCode == http.StatusBadRequest:
		w.transition(StateRevalidating)
		if err := w.revalidate(form, resp.Body, user, placeholder); err != nil {
			w.fail(placeholder, err)
			return err
		}
		w.logger.Debug().Msg("submission rejected by validation")
		return nil

	default:
		err := apierrors.NewAPIErrorWithBody(resp.StatusCode, action, "submit message failed", readErrorBody(resp.Body))
		w.fail(placeholder, err)
		return err
	}
}

// revalidate swaps in the replacement form from a 400 body and retracts the
// void submission's messages. The new form gets the same handler set.
func (w *Widget) revalidate(form *dom.Form, body io.Reader, user, placeholder *html.Node) error {
	markup, err := io.ReadAll(body)
	if err != nil {
		return apierrors.NewStreamError(len(markup), err)
	}
	scratch, err := dom.ParseContainer(string(markup))
	if err != nil {
		return apierrors.NewParseError(err.Error(), "replacement form")
	}
	id := form.ID()
	replacement := dom.Find(scratch, dom.All(dom.ByTag(atom.Form), dom.ByID(id)))
	if replacement == nil {
		return fmt.Errorf("%w: replacement for #%s", apierrors.ErrFormNotFound, id)
	}

	w.mu.Lock()
	dom.Remove(user)
	dom.Remove(placeholder)
	w.unbindMessageForm(form)
	dom.ReplaceWith(form.Node, replacement)
	w.form = dom.NewForm(replacement)
	w.bindMessageForm(w.form)
	w.scroll.toBottom()
	w.mu.Unlock()

	w.notify(ChangeForm, StateRevalidating)
	return nil
}

// fail replaces the placeholder with the failure notice. The user message
// stays in the view.
func (w *Widget) fail(placeholder *html.Node, err error) {
	w.logger.Warn().Err(err).
		Int("status", apierrors.GetHTTPStatus(err)).
		Msg("submission failed")

	w.mu.Lock()
	dom.RemoveAttr(placeholder, "aria-busy")
	dom.SetTextContent(placeholder, models.FailureText)
	w.scroll.toBottom()
	w.setState(StateFailed)
	w.mu.Unlock()

	w.notify(ChangeMessages, StateFailed)
}

// finishSubmit re-enables the send control and returns to ready. It runs on
// every exit path of a cycle that got past the guard.
func (w *Widget) finishSubmit(send *html.Node) {
	w.mu.Lock()
	if send != nil {
		dom.RemoveAttr(send, "disabled")
	}
	w.setState(StateReady)
	w.mu.Unlock()

	w.notify(ChangeState, StateReady)
}

func (w *Widget) transition(to State) {
	w.mu.Lock()
	w.setState(to)
	w.mu.Unlock()
	w.notify(ChangeState, to)
}

// readErrorBody reads at most maxErrorBody bytes of a failed response
func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return string(data)
}
