package widget

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/dom"
	apierrors "github.com/diogo/chatwidget/internal/errors"
)

// streamReadSize is the largest chunk taken from the body per read
const streamReadSize = 32 * 1024

// chunkDecoder decodes UTF-8 one network chunk at a time. A rune split
// across chunks is held back until its remaining bytes arrive.
type chunkDecoder struct {
	t    transform.Transformer
	rest []byte
}

func newChunkDecoder() *chunkDecoder {
	return &chunkDecoder{t: unicode.UTF8.NewDecoder()}
}

// decode returns the text completed by chunk. atEOF flushes held bytes,
// replacing an incomplete trailing sequence with U+FFFD.
func (d *chunkDecoder) decode(chunk []byte, atEOF bool) string {
	src := append(d.rest, chunk...)
	dst := make([]byte, 3*len(src)+4)

	var out []byte
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		if errors.Is(err, transform.ErrShortDst) {
			dst = make([]byte, 2*len(dst))
			continue
		}
		break
	}
	d.rest = append([]byte(nil), src...)
	return string(out)
}

// consumeStream renders a streamed reply into target, one chunk per read.
// After every chunk target holds the whole reply so far: the concatenation
// of all chunks in append mode, or the latest chunk in cumulative mode. The
// busy marker is cleared by the first byte received, even when that byte
// does not complete a character yet.
func (w *Widget) consumeStream(ctx context.Context, body io.Reader, target *html.Node) error {
	decoder := newChunkDecoder()
	buf := make([]byte, streamReadSize)

	var (
		acc      strings.Builder
		bytesIn  int
		rendered bool
	)
	render := func(text string, replace bool) {
		if replace {
			acc.Reset()
		}
		acc.WriteString(text)
		w.renderChunk(target, acc.String(), !rendered)
		rendered = true
	}

	for {
		if err := ctx.Err(); err != nil {
			return apierrors.NewStreamError(bytesIn, err)
		}

		n, err := body.Read(buf)
		if n > 0 {
			bytesIn += n
			if text := decoder.decode(buf[:n], false); text != "" || !rendered {
				render(text, w.streamMode == config.StreamCumulative)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return apierrors.NewStreamError(bytesIn, err)
		}
	}

	// held bytes complete the latest chunk
	if text := decoder.decode(nil, true); text != "" {
		render(text, false)
	}
	if !rendered {
		// an empty reply still replaces the placeholder
		w.renderChunk(target, "", true)
	}
	return nil
}

// renderChunk writes the reply so far into target, as sanitised markup when
// the panel renders markdown and as literal text otherwise.
func (w *Widget) renderChunk(target *html.Node, text string, first bool) {
	w.mu.Lock()
	if first {
		dom.RemoveAttr(target, "aria-busy")
	}
	if w.config.RenderMarkdown() {
		if err := dom.SetInnerHTML(target, w.sanitizer.Sanitize(text)); err != nil {
			w.logger.Warn().Err(err).Msg("rendering reply as text")
			dom.SetTextContent(target, text)
		}
	} else {
		dom.SetTextContent(target, text)
	}
	w.scroll.toBottom()
	state := w.state
	w.mu.Unlock()

	w.notify(ChangeMessages, state)
}
