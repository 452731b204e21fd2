package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/lpaudit/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps how much of a response body is read.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

var errTooManyRedirects = errors.New("too many redirects")

// handshakeError marks failures that happened during the TLS handshake.
type handshakeError struct{ err error }

func (e *handshakeError) Error() string { return e.err.Error() }
func (e *handshakeError) Unwrap() error { return e.err }

// Options controls a single fetch.
type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
}

// Fetcher performs plain HTTP GETs with a Chrome TLS fingerprint.
// It is safe for concurrent use.
type Fetcher struct {
	proxy string
}

// NewFetcher creates a Fetcher. proxy may be empty or an http(s) proxy URL.
func NewFetcher(proxy string) *Fetcher {
	return &Fetcher{proxy: proxy}
}

// Fetch retrieves rawURL. The result is always non-nil: on failure its
// Error field carries the message and the returned error is an
// *models.AuditError with the same message.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*models.FetchResult, error) {
	result := &models.FetchResult{
		URL:           rawURL,
		Headers:       map[string]string{},
		RedirectChain: []string{},
	}

	target, err := NormalizeURL(rawURL)
	if err != nil {
		return fail(result, models.NewAuditError(models.ErrCodeInvalidInput, err.Error(), err))
	}
	result.URL = target

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	client := f.newClient(opts, &result.RedirectChain)
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(result, models.NewAuditError(models.ErrCodeInvalidInput, "Request failed: "+err.Error(), err))
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return fail(result, categorizeFetchError(err, opts))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(result, categorizeFetchError(err, opts))
	}

	result.URL = resp.Request.URL.String()
	result.StatusCode = resp.StatusCode
	result.Content = string(body)
	for k, v := range resp.Header {
		result.Headers[k] = strings.Join(v, ", ")
	}
	result.NeedsBrowser = NeedsBrowser(body)
	return result, nil
}

func (f *Fetcher) newClient(opts Options, chain *[]string) *http.Client {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	if f.proxy != "" {
		if proxyURL, err := url.Parse(f.proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !opts.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) > opts.MaxRedirects {
				return errTooManyRedirects
			}
			*chain = append(*chain, via[len(via)-1].URL.String())
			return nil
		},
	}
}

// dialTLSChrome establishes a TLS connection using the http/1.1 Chrome spec.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, &handshakeError{fmt.Errorf("apply tls spec: %w", err)}
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, &handshakeError{err}
	}
	return tlsConn, nil
}

// NormalizeURL prefixes https:// when rawURL carries no scheme and rejects
// schemes other than http and https.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("Invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("Invalid URL scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("Invalid URL: missing host in %q", rawURL)
	}
	return u.String(), nil
}

// categorizeFetchError maps transport failures to the fetch error messages.
func categorizeFetchError(err error, opts Options) *models.AuditError {
	var hsErr *handshakeError
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return models.NewAuditError(models.ErrCodeTimeout,
			fmt.Sprintf("Request timed out after %g seconds", opts.Timeout.Seconds()), err)
	case errors.Is(err, errTooManyRedirects):
		return models.NewAuditError(models.ErrCodeTooManyRedirects,
			fmt.Sprintf("Too many redirects (max %d)", opts.MaxRedirects), err)
	case errors.As(err, &hsErr):
		return models.NewAuditError(models.ErrCodeTLS, "SSL error: "+hsErr.Error(), err)
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		return models.NewAuditError(models.ErrCodeFetch, "Connection error: "+rootCause(err).Error(), err)
	default:
		return models.NewAuditError(models.ErrCodeFetch, "Request failed: "+rootCause(err).Error(), err)
	}
}

// rootCause strips the *url.Error wrapper so messages do not repeat the URL.
func rootCause(err error) error {
	var uErr *url.Error
	if errors.As(err, &uErr) {
		return uErr.Err
	}
	return err
}

func fail(result *models.FetchResult, err *models.AuditError) (*models.FetchResult, error) {
	msg := err.Message
	result.Error = &msg
	return result, err
}
