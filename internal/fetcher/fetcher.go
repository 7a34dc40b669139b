package fetcher

import (
	"context"
	"log/slog"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("elecciones/internal/fetcher")

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultReferer   = "https://eleccionesperu.pe/"
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Referer   string
	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool
}

// Fetcher downloads binary assets (logos, photos). A failed download is
// never fatal: it yields nil.
type Fetcher struct {
	client *resty.Client
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Referer == "" {
		opts.Referer = DefaultReferer
	}

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("referer", opts.Referer)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)

	return &Fetcher{client: client}
}

// Fetch performs a single GET and returns the raw body, or nil when url
// is empty or the request fails in any way.
func (f *Fetcher) Fetch(ctx context.Context, url string) []byte {
	if url == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		slog.Warn("failed to download asset", "url", url, "err", err)
		return nil
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected status")
		slog.Warn("failed to download asset", "url", url, "status", res.Status())
		return nil
	}

	body := res.Body()
	slog.Debug("downloaded asset", "url", url, "size", humanize.Bytes(uint64(len(body))))
	return body
}
