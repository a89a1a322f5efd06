package microformats

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mf2 "willnorris.com/go/microformats"

	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
)

const appPage = `<!doctype html>
<html>
<head>
  <title>Home</title>
  <link rel="icon" href="/favicon.ico">
  <link rel="stylesheet" href="/site.css">
</head>
<body>
  <div class="h-app">
    <img class="u-logo" src="icon.svg">
    <a class="p-name u-url" href="/">My App</a>
  </div>
</body>
</html>`

func TestParseExtractsAppAndRels(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://app.example/client/")
	require.NoError(t, err)

	doc, err := NewParser().Parse([]byte(appPage), base)
	require.NoError(t, err)

	require.Contains(t, doc.Rels, "icon")
	assert.Equal(t, discovery.RelList{discovery.Text("https://app.example/favicon.ico")}, doc.Rels["icon"])
	assert.Contains(t, doc.Rels, "stylesheet")

	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.True(t, item.HasType("h-app"))
	require.NotEmpty(t, item.Properties["name"])
	assert.Equal(t, "My App", discovery.TextOf(item.Properties["name"][0]))
	require.NotEmpty(t, item.Properties["logo"])
	assert.Equal(t, "https://app.example/client/icon.svg", discovery.TextOf(item.Properties["logo"][0]))
}

func TestParseWithoutItems(t *testing.T) {
	t.Parallel()

	doc, err := NewParser().Parse([]byte("<title>Plain</title>"), nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.Rels)
}

func TestConvertValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   interface{}
		want discovery.Value
		ok   bool
	}{
		{name: "string", in: "plain", want: discovery.Text("plain"), ok: true},
		{
			name: "image with alt",
			in:   map[string]string{"value": "https://a.example/logo.png", "alt": "Logo"},
			want: discovery.Structured{"value": "https://a.example/logo.png", "alt": "Logo"},
			ok:   true,
		},
		{
			name: "embedded markup",
			in:   map[string]interface{}{"value": "Hi", "html": "<b>Hi</b>"},
			want: discovery.Structured{"value": "Hi", "html": "<b>Hi</b>"},
			ok:   true,
		},
		{
			name: "nested item",
			in:   &mf2.Microformat{Type: []string{"h-card"}, Value: "Jane"},
			want: discovery.Structured{"value": "Jane"},
			ok:   true,
		},
		{name: "unsupported", in: 42, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := convertValue(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
