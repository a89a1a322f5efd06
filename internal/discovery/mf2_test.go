package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMicroformats(t *testing.T) {
	t.Parallel()

	doc := Document{
		Rels: map[string]Rel{
			"icon":       RelList{Text("https://app.example/favicon.ico")},
			"stylesheet": RelList{Text("https://app.example/site.css")},
		},
		Items: []Item{
			{Type: []string{"h-card"}, Properties: map[string][]Value{"name": {Text("Jane")}}},
			{Type: []string{"h-x-app"}, Properties: map[string][]Value{
				"name": {Text("Legacy App"), Text("Second")},
				"logo": {Structured{"value": "logo.png", "alt": "Logo"}},
			}},
			{Type: []string{"h-app"}, Properties: map[string][]Value{"name": {Text("Later")}}},
		},
	}

	p := newPass("https://app.example/")
	assert.True(t, p.extractMicroformats(doc))
	assert.Equal(t, "Legacy App", p.clientName)
	assert.Equal(t, "logo.png", p.clientIcon)
	assert.Equal(t, map[string]Rel{"icon": RelList{Text("https://app.example/favicon.ico")}}, p.rels)
	assert.Len(t, p.mf2, 2)
}

func TestExtractMicroformatsWithoutApp(t *testing.T) {
	t.Parallel()

	p := newPass("https://app.example/")
	found := p.extractMicroformats(Document{
		Items: []Item{{Type: []string{"h-entry"}, Properties: map[string][]Value{"name": {Text("Post")}}}},
	})
	assert.False(t, found)
	assert.Empty(t, p.clientName)
	assert.Nil(t, p.mf2)
	assert.Empty(t, p.rels)
}

func TestExtractMicroformatsEmptyApp(t *testing.T) {
	t.Parallel()

	p := newPass("https://app.example/")
	assert.False(t, p.extractMicroformats(Document{
		Items: []Item{{Type: []string{"h-app"}, Properties: map[string][]Value{}}},
	}))
}

func TestApplyHTMLFallback(t *testing.T) {
	t.Parallel()

	p := newPass("https://app.example/")
	p.rels = map[string]Rel{"icon": RelList{Text("/favicon.ico")}}
	err := p.applyHTMLFallback([]byte("<html><head><title>Home</title><title>Ignored</title></head></html>"))
	assert.NoError(t, err)
	assert.Equal(t, "Home", p.clientName)
	assert.Equal(t, "/favicon.ico", p.clientIcon)
	assert.Equal(t, map[string]string{"title": "Home"}, p.html)
}

func TestApplyHTMLFallbackWithoutTitle(t *testing.T) {
	t.Parallel()

	p := newPass("https://app.example/")
	assert.NoError(t, p.applyHTMLFallback([]byte("<p>no title</p>")))
	assert.Empty(t, p.clientName)
	assert.Empty(t, p.clientIcon)
	assert.Nil(t, p.html)
}
