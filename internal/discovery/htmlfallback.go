package discovery

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// htmlTitleKey is the html map key holding the page title.
const htmlTitleKey = "title"

// applyHTMLFallback fills in name and icon when the page has no application item: the icon
// comes from the filtered rels, the name from the first <title> element.
func (p *pass) applyHTMLFallback(body []byte) error {
	p.clientIcon = ResolveIcon(p.rels)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return nil
	}
	p.html = map[string]string{htmlTitleKey: title.Text()}
	p.clientName = title.Text()
	return nil
}
