package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/diogo/chatwidget/internal/dom"
	"github.com/diogo/chatwidget/internal/models"
)

func TestNewMessageElement(t *testing.T) {
	tests := []struct {
		text  string
		role  models.Role
		class string
	}{
		{"Hello", models.RoleUser, "chat__msg--user"},
		{"Thinking...", models.RoleAssistant, "chat__msg--assistant"},
		{"<b>not markup</b>", models.RoleUser, "chat__msg--user"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n := newMessageElement(tt.text, tt.role)

			assert.Nil(t, n.Parent, "element must be detached")
			assert.Equal(t, "div", n.Data)
			assert.Equal(t, []string{"chat__msg", tt.class}, dom.Classes(n))

			require.NotNil(t, n.FirstChild)
			assert.Equal(t, html.TextNode, n.FirstChild.Type)
			assert.Nil(t, n.FirstChild.NextSibling)
			assert.Equal(t, tt.text, dom.TextContent(n))

			role, ok := messageRole(n)
			assert.True(t, ok)
			assert.Equal(t, tt.role, role)
		})
	}
}

func TestNewMessageElement_EmptyText(t *testing.T) {
	n := newMessageElement("", models.RoleUser)
	assert.Nil(t, n.FirstChild)
	assert.Equal(t, "", dom.TextContent(n))
}

func TestMessageRole_Unknown(t *testing.T) {
	container, err := dom.ParseContainer(`<div class="chat__notice">Server restarted</div>`)
	require.NoError(t, err)

	_, ok := messageRole(container.FirstChild)
	assert.False(t, ok)
}
