// Package snapindex fetches and parses the snapshot directory: the JSON
// document naming the latest nightly and the newest minor of each LTS
// major.
package snapindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kristoff3r/stack/internal/config"
	"github.com/kristoff3r/stack/internal/httpclient"
	"github.com/kristoff3r/stack/internal/log"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// Client fetches the snapshot directory document from a configured URL.
type Client struct {
	URL    string
	client *http.Client
	logger log.Logger
}

// New builds a Client pointed at the configured registry's snapshot
// directory endpoint.
func New() *Client {
	return &Client{
		URL:    config.GetRegistryURL() + "/lts-haskell/master/snap-directory.json",
		client: httpclient.New(),
		logger: log.Component("snapindex"),
	}
}

// GetSnapshots downloads and parses the snapshot directory.
func (c *Client) GetSnapshots(ctx context.Context) (snapmodel.Snapshots, error) {
	c.logger.Info("fetching snapshot directory", "url", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeValidation, Message: "failed to build request", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return snapmodel.Snapshots{}, wrapNetworkError(err, "failed to fetch snapshot directory")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeNetwork, Message: fmt.Sprintf("snapshot directory returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeParsing, Message: "failed to read snapshot directory body", Err: err}
	}

	return ParseDirectory(data)
}

// ParseDirectory decodes a snapshot-directory JSON document and classifies
// each key/value pair: the "nightly" key's value must parse as a Nightly
// SnapName; "lts-"-prefixed keys' values must parse as LTS, contributing
// their {major: minor}; every other key is ignored.
func ParseDirectory(data []byte) (snapmodel.Snapshots, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeParsing, Message: "failed to decode snapshot directory JSON", Err: err}
	}

	out := snapmodel.Snapshots{LTSMinors: make(map[int]int)}

	for key, value := range raw {
		switch {
		case key == "nightly":
			name, err := snapmodel.ParseSnapName(value)
			if err != nil {
				return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeValidation, Message: fmt.Sprintf("nightly key value %q is not a valid snapshot name", value), Err: err}
			}
			if !name.IsNightly() {
				return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeValidation, Message: fmt.Sprintf("nightly key value %q is not a Nightly snapshot", value), Err: ErrInvalidSnapshotDirectory}
			}
			out.LatestNightly = name.Day

		case strings.HasPrefix(key, "lts-"):
			name, err := snapmodel.ParseSnapName(value)
			if err != nil {
				return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeValidation, Message: fmt.Sprintf("lts key %q value %q is not a valid snapshot name", key, value), Err: err}
			}
			if !name.IsLTS() {
				return snapmodel.Snapshots{}, &IndexError{Type: ErrTypeValidation, Message: fmt.Sprintf("lts key %q value %q is not an LTS snapshot", key, value), Err: ErrInvalidSnapshotDirectory}
			}
			out.LTSMinors[name.Major] = name.Minor

		default:
			// unrecognized keys (e.g. future metadata fields) are ignored
		}
	}

	return out, nil
}
