package widget

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/api"
)

const panelMarkup = `
<div class="chat">
  <button type="button" class="chat__toggle">Chat</button>
  <div class="chat__panel">
    <button type="button" class="chat__close">Close</button>
    <div class="chat__messages">
      <div class="chat__msg chat__msg--user">Earlier question</div>
      <div class="chat__msg chat__msg--assistant">Earlier answer</div>
    </div>
    <form id="chat-form" action="/chat/" method="post">
      <input type="hidden" name="csrfmiddlewaretoken" value="tok">
      <textarea name="message" class="chat__textarea" rows="1" placeholder="Type your message here..."></textarea>
      <button type="submit" class="chat__send">Send</button>
    </form>
    <form id="clear-form" action="/chat/clear/" method="post">
      <input type="hidden" name="csrfmiddlewaretoken" value="tok">
      <button type="submit">Clear</button>
    </form>
  </div>
  <script type="application/json" id="chat-config">{"RENDER_MARKDOWN": false}</script>
</div>`

const invalidFormMarkup = `
<div class="chat">
  <form id="chat-form" action="/chat/" method="post">
    <input type="hidden" name="csrfmiddlewaretoken" value="tok2">
    <ul class="errorlist"><li>This field is required.</li></ul>
    <textarea name="message" class="chat__textarea" rows="1" aria-invalid="true"></textarea>
    <button type="submit" class="chat__send">Send</button>
  </form>
</div>`

// chunkedBody yields one scripted chunk per Read, then err (io.EOF by default)
type chunkedBody struct {
	chunks [][]byte
	err    error
	closed bool
}

func newChunkedBody(chunks ...string) *chunkedBody {
	b := &chunkedBody{}
	for _, c := range chunks {
		b.chunks = append(b.chunks, []byte(c))
	}
	return b
}

func (b *chunkedBody) Read(p []byte) (int, error) {
	if len(b.chunks) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[0])
	if n < len(b.chunks[0]) {
		b.chunks[0] = b.chunks[0][n:]
	} else {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *chunkedBody) Close() error {
	b.closed = true
	return nil
}

// pipeBody blocks on Read until the test sends a chunk or closes the pipe
type pipeBody struct {
	ch chan string
}

func newPipeBody() *pipeBody {
	return &pipeBody{ch: make(chan string)}
}

func (b *pipeBody) Read(p []byte) (int, error) {
	chunk, ok := <-b.ch
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (b *pipeBody) Close() error { return nil }

func response(status int, body io.ReadCloser) *api.Response {
	return &api.Response{StatusCode: status, Status: fmt.Sprintf("%d %s", status, http.StatusText(status)), Body: body}
}

type submitCall struct {
	action string
	data   url.Values
}

// fakeClient scripts the chat server
type fakeClient struct {
	mu       sync.Mutex
	panel    string
	panelErr error

	onSubmit func(call submitCall) (*api.Response, error)
	onClear  func(call submitCall) (*api.Response, error)

	submits   []submitCall
	clears    []submitCall
	submitted chan submitCall
}

func newFakeClient(panel string) *fakeClient {
	return &fakeClient{panel: panel, submitted: make(chan submitCall, 16)}
}

func (f *fakeClient) FetchPanel(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panel, f.panelErr
}

func (f *fakeClient) Submit(ctx context.Context, action string, data url.Values) (*api.Response, error) {
	call := submitCall{action: action, data: data}
	f.mu.Lock()
	f.submits = append(f.submits, call)
	handler := f.onSubmit
	f.mu.Unlock()
	select {
	case f.submitted <- call:
	default:
	}

	if handler == nil {
		return response(200, newChunkedBody()), nil
	}
	return handler(call)
}

func (f *fakeClient) Clear(ctx context.Context, action string, data url.Values) (*api.Response, error) {
	call := submitCall{action: action, data: data}
	f.mu.Lock()
	f.clears = append(f.clears, call)
	handler := f.onClear
	f.mu.Unlock()

	if handler == nil {
		return response(204, newChunkedBody()), nil
	}
	return handler(call)
}

func (f *fakeClient) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func (f *fakeClient) streams(chunks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSubmit = func(submitCall) (*api.Response, error) {
		return response(200, newChunkedBody(chunks...)), nil
	}
}

func (f *fakeClient) responds(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSubmit = func(submitCall) (*api.Response, error) {
		return response(status, newChunkedBody(body)), nil
	}
}

// loadWidget mounts panel markup into a fresh widget
func loadWidget(t *testing.T, client *fakeClient, opts ...Option) *Widget {
	t.Helper()
	w := New(client, opts...)
	require.NoError(t, w.Load(context.Background()))
	return w
}

func contents(w *Widget) []string {
	var out []string
	for _, m := range w.Messages() {
		out = append(out, string(m.Role)+": "+m.Content)
	}
	return out
}
