package discovery

// Recognized content types. Matching is exact; parameters such as charset are not stripped.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

// Content is the classified body of a fetch: JSONContent, HTMLContent or UnknownContent.
type Content interface {
	isContent()
}

// JSONContent is a body declared as a JSON client metadata document.
type JSONContent struct {
	Body []byte
}

// HTMLContent is a body declared as an HTML page.
type HTMLContent struct {
	Body []byte
}

// UnknownContent is any other declared type, including a missing header.
type UnknownContent struct {
	ContentType string
}

func (JSONContent) isContent()    {}
func (HTMLContent) isContent()    {}
func (UnknownContent) isContent() {}

// Classify branches on the response's declared content type.
func Classify(resp Response) Content {
	switch resp.ContentType {
	case ContentTypeJSON:
		return JSONContent{Body: resp.Body}
	case ContentTypeHTML:
		return HTMLContent{Body: resp.Body}
	default:
		return UnknownContent{ContentType: resp.ContentType}
	}
}
