package commands

import (
	"context"
	"io"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/widget"
)

const testPanel = `
<div class="chat">
  <button type="button" class="chat__toggle">Chat</button>
  <div class="chat__panel">
    <div class="chat__messages">
      <div class="chat__msg chat__msg--user">Earlier question</div>
      <div class="chat__msg chat__msg--assistant">Earlier answer</div>
    </div>
    <form id="chat-form" action="/chat/" method="post">
      <input type="hidden" name="csrfmiddlewaretoken" value="tok">
      <textarea name="message" rows="1"></textarea>
      <button type="submit" class="chat__send">Send</button>
    </form>
    <form id="clear-form" action="/chat/clear/" method="post">
      <input type="hidden" name="csrfmiddlewaretoken" value="tok">
      <button type="submit">Clear</button>
    </form>
  </div>
  <script type="application/json" id="chat-config">{"CHAT_TITLE": "Support"}</script>
</div>`

const rejectedForm = `
<form id="chat-form" action="/chat/" method="post">
  <input type="hidden" name="csrfmiddlewaretoken" value="tok2">
  <ul class="errorlist"><li>Ensure this value has at most 500 characters.</li></ul>
  <textarea name="message" aria-invalid="true"></textarea>
  <button type="submit" class="chat__send">Send</button>
</form>`

// chunkReader returns one chunk per Read
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// fakeClient is a scripted chat server
type fakeClient struct {
	mu           sync.Mutex
	panel        string
	panelErr     error
	replyStatus  int
	reply        []string
	clearStatus  int
	issued       *config.Cookies
	sent         []string
	clears       int
	closed       bool
	loadedCookie *config.Cookies
}

func (f *fakeClient) FetchPanel(ctx context.Context) (string, error) {
	return f.panel, f.panelErr
}

func (f *fakeClient) Submit(ctx context.Context, action string, data url.Values) (*api.Response, error) {
	f.mu.Lock()
	f.sent = append(f.sent, data.Get("message"))
	f.mu.Unlock()
	status := f.replyStatus
	if status == 0 {
		status = 200
	}
	chunks := append([]string(nil), f.reply...)
	return &api.Response{StatusCode: status, Body: io.NopCloser(&chunkReader{chunks: chunks})}, nil
}

func (f *fakeClient) Clear(ctx context.Context, action string, data url.Values) (*api.Response, error) {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
	status := f.clearStatus
	if status == 0 {
		status = 204
	}
	return &api.Response{StatusCode: status, Body: io.NopCloser(&chunkReader{})}, nil
}

func (f *fakeClient) SessionCookies() *config.Cookies {
	return f.issued
}

func (f *fakeClient) Close() {
	f.closed = true
}

// fakeTUI records the widget it was started with
type fakeTUI struct {
	state  widget.State
	opts   render.Options
	called bool
	err    error

	configRuns int
}

func (f *fakeTUI) RunChat(ctx context.Context, w *widget.Widget, opts render.Options) error {
	f.called = true
	f.state = w.State()
	f.opts = opts
	return f.err
}

func (f *fakeTUI) RunConfig() error {
	f.configRuns++
	return f.err
}

func testDeps(client *fakeClient) *Dependencies {
	return &Dependencies{
		Connect: func(cfg config.Config, cookies *config.Cookies, logger zerolog.Logger) (SessionClient, error) {
			client.loadedCookie = cookies
			return client, nil
		},
		TUI: &fakeTUI{},
	}
}

// useTempHome points the config directory at a fresh temp dir for one test
func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvPrefix+"HOME", dir)
	return dir
}
