package discovery

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/metrics"
)

const tracerName = "github.com/JakeFAU/indieauth-client-discovery/internal/discovery"

// Fetcher performs the single bounded GET of a discovery pass. Implementations return
// *FetchStatusError for non-2xx answers and *FetchTransportError for everything else.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Response, error)
}

// Discoverer runs discovery passes. It holds no per-pass state and is safe for
// concurrent use; each call to Discover builds and returns its own Result.
type Discoverer struct {
	fetcher Fetcher
	parser  MicroformatsParser
	logger  *zap.Logger
}

// New builds a Discoverer. A nil logger is replaced with a no-op logger.
func New(fetcher Fetcher, parser MicroformatsParser, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		fetcher: fetcher,
		parser:  parser,
		logger:  logger,
	}
}

// Discover resolves display metadata for clientID. It never fails: the Outcome always
// carries a usable Result, at minimum one holding only clientID, and Err explains why the
// pass stopped early. The diagnostic is logged here so callers may ignore it.
func (d *Discoverer) Discover(ctx context.Context, clientID string) Outcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "discovery.Discover")
	defer span.End()

	start := time.Now()
	out := d.run(ctx, clientID)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("client_id", clientID),
		attribute.String("discovery.format", string(out.Format)),
		attribute.String("discovery.outcome", Kind(out.Err)),
	)
	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
	}
	metrics.ObserveDiscovery(string(out.Format), Kind(out.Err), elapsed)
	d.report(clientID, out, elapsed)
	return out
}

func (d *Discoverer) run(ctx context.Context, clientID string) Outcome {
	p := newPass(clientID)

	base, err := CheckHost(clientID)
	if err != nil {
		return p.outcome(FormatNone, 0, err)
	}

	resp, err := d.fetcher.Fetch(ctx, clientID)
	if err != nil {
		var statusErr *FetchStatusError
		code := 0
		if errors.As(err, &statusErr) {
			code = statusErr.Code
		}
		return p.outcome(FormatNone, code, err)
	}

	switch content := Classify(resp).(type) {
	case JSONContent:
		err = p.parseJSONMetadata(content.Body)
		p.resolveIcon(base)
		return p.outcome(FormatJSON, resp.StatusCode, err)
	case HTMLContent:
		err = d.parseHTML(p, content.Body, base)
		p.resolveIcon(base)
		return p.outcome(FormatHTML, resp.StatusCode, err)
	case UnknownContent:
		d.logger.Debug("Unrecognized client document type",
			zap.String("client_id", clientID),
			zap.String("content_type", content.ContentType),
		)
		return p.outcome(FormatUnknown, resp.StatusCode, nil)
	default:
		return p.outcome(FormatUnknown, resp.StatusCode, nil)
	}
}

func (d *Discoverer) parseHTML(p *pass, body []byte, base *url.URL) error {
	if d.parser == nil {
		return p.applyHTMLFallback(body)
	}
	doc, err := d.parser.Parse(body, base)
	if err != nil {
		return fmt.Errorf("parse microformats: %w", err)
	}
	if p.extractMicroformats(doc) {
		return nil
	}
	return p.applyHTMLFallback(body)
}

func (d *Discoverer) report(clientID string, out Outcome, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("client_id", clientID),
		zap.String("format", string(out.Format)),
		zap.String("outcome", Kind(out.Err)),
		zap.Duration("duration", elapsed),
	}
	switch {
	case out.Err == nil:
		d.logger.Debug("Client information discovered", fields...)
	case errors.Is(out.Err, ErrHostRejected):
		d.logger.Info("Skipped client information discovery", append(fields, zap.Error(out.Err))...)
	default:
		if out.StatusCode != 0 {
			fields = append(fields, zap.Int("status_code", out.StatusCode))
		}
		d.logger.Warn("Failed to retrieve client information", append(fields, zap.Error(out.Err))...)
	}
}

// pass is the mutable state of one discovery run. It is never shared; export copies it
// into the Result handed to callers.
type pass struct {
	clientID   string
	clientName string
	clientIcon string
	clientURI  string
	rels       map[string]Rel
	mf2        map[string][]Value
	html       map[string]string
	json       map[string]any
}

func newPass(clientID string) *pass {
	return &pass{clientID: clientID}
}

// resolveIcon makes a non-empty icon candidate absolute against the fetched URL.
func (p *pass) resolveIcon(base *url.URL) {
	if p.clientIcon == "" {
		return
	}
	p.clientIcon = absoluteURL(p.clientIcon, base)
}

func (p *pass) outcome(format Format, status int, err error) Outcome {
	return Outcome{
		Result:     p.export(),
		Format:     format,
		StatusCode: status,
		Err:        err,
	}
}

// export produces the read-only Result for this pass.
func (p *pass) export() Result {
	return Result{
		ClientID:   p.clientID,
		ClientName: p.clientName,
		ClientIcon: p.clientIcon,
		ClientURI:  p.clientURI,
		Rels:       copyRels(p.rels),
		MF2:        copyProperties(p.mf2),
		HTML:       maps.Clone(p.html),
		JSON:       maps.Clone(p.json),
	}
}

func copyRels(src map[string]Rel) map[string]Rel {
	if src == nil {
		return nil
	}
	out := make(map[string]Rel, len(src))
	for k, rel := range src {
		switch r := rel.(type) {
		case RelList:
			out[k] = append(RelList(nil), r...)
		case RelObject:
			out[k] = maps.Clone(r)
		default:
			out[k] = rel
		}
	}
	return out
}

func copyProperties(src map[string][]Value) map[string][]Value {
	if src == nil {
		return nil
	}
	out := make(map[string][]Value, len(src))
	for k, values := range src {
		out[k] = append([]Value(nil), values...)
	}
	return out
}
