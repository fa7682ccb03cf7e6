// Package httpclient builds the hardened HTTP client shared by every
// network-fetching subsystem (snapshot index, snapshot loader): one
// configuration, reused instead of re-derived per caller.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/kristoff3r/stack/internal/config"
)

// New returns an HTTP client hardened for unattended registry fetches:
// compression disabled (a compressed response could decompress to far more
// than the declared Content-Length, a classic decompression bomb), and
// explicit timeouts at every phase of the connection.
func New() *http.Client {
	return &http.Client{
		Timeout: config.GetAPITimeout(),
		Transport: &http.Transport{
			DisableCompression: true,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
