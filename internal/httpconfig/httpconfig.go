// Package httpconfig builds the HTTP clients used by the HTTP filesystem
// driver and the telemetry sender. It supports standard proxies as well as
// NTLM-authenticated proxies, which are still common in corporate data
// platforms.
package httpconfig

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	ntlm "github.com/launchdarkly/go-ntlm-proxy-auth"
)

// DefaultTimeout is the request timeout used when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Options describes how to construct an HTTP client.
type Options struct {
	// Timeout is the overall request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// ProxyURL routes all requests through a proxy. Empty means the
	// standard environment-based proxy resolution.
	ProxyURL string

	// NTLMUsername, NTLMPassword, and NTLMDomain enable NTLM proxy
	// authentication. Username and password are required together and only
	// take effect when ProxyURL is set.
	NTLMUsername string
	NTLMPassword string
	NTLMDomain   string

	// CACert adds a PEM certificate to the trusted root pool, for servers
	// or proxies with self-signed certificates.
	CACert []byte
}

// NewHTTPClient creates an HTTP client from the options.
func (o Options) NewHTTPClient() (*http.Client, error) {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
	}
	transport = transport.Clone()

	if len(o.CACert) > 0 {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(o.CACert) {
			return nil, errors.New("invalid CA certificate data")
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	if o.ProxyURL != "" {
		proxyURL, err := url.Parse(o.ProxyURL)
		if err != nil {
			return nil, err
		}
		if o.NTLMUsername != "" || o.NTLMPassword != "" {
			if o.NTLMUsername == "" || o.NTLMPassword == "" {
				return nil, errors.New("NTLM proxy authentication requires both a username and a password")
			}
			// The NTLM handshake happens at dial time, so the transport must
			// not also apply normal proxying.
			dialer := &net.Dialer{Timeout: timeout}
			transport.Proxy = nil
			transport.DialContext = ntlm.NewNTLMProxyDialContext(
				dialer, *proxyURL, o.NTLMUsername, o.NTLMPassword, o.NTLMDomain, transport.TLSClientConfig)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{Timeout: timeout, Transport: transport}, nil
}
