package httpconfig

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClient(t *testing.T) {
	client, err := Options{}.NewHTTPClient()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestCustomTimeout(t *testing.T) {
	client, err := Options{Timeout: 3 * time.Second}.NewHTTPClient()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, client.Timeout)
}

func TestProxyURL(t *testing.T) {
	client, err := Options{ProxyURL: "http://proxy.internal:8080"}.NewHTTPClient()
	require.NoError(t, err)
	transport := client.Transport.(*http.Transport)
	require.NotNil(t, transport.Proxy)

	req, _ := http.NewRequest("GET", "http://example.com", nil)
	proxied, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.internal:8080", proxied.String())
}

func TestInvalidProxyURL(t *testing.T) {
	_, err := Options{ProxyURL: "::not a url"}.NewHTTPClient()
	assert.Error(t, err)
}

func TestNTLMProxy(t *testing.T) {
	t.Run("replaces the transport proxy with a dialer", func(t *testing.T) {
		client, err := Options{
			ProxyURL:     "http://proxy.internal:8080",
			NTLMUsername: "user",
			NTLMPassword: "pass",
			NTLMDomain:   "corp",
		}.NewHTTPClient()
		require.NoError(t, err)
		transport := client.Transport.(*http.Transport)
		assert.Nil(t, transport.Proxy)
		assert.NotNil(t, transport.DialContext)
	})

	t.Run("requires both username and password", func(t *testing.T) {
		_, err := Options{ProxyURL: "http://proxy.internal:8080", NTLMUsername: "user"}.NewHTTPClient()
		assert.Error(t, err)
		_, err = Options{ProxyURL: "http://proxy.internal:8080", NTLMPassword: "pass"}.NewHTTPClient()
		assert.Error(t, err)
	})
}

func TestCACert(t *testing.T) {
	t.Run("invalid certificate data", func(t *testing.T) {
		_, err := Options{CACert: []byte("not a pem block")}.NewHTTPClient()
		assert.Error(t, err)
	})
}
