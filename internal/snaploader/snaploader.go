// Package snaploader resolves a snapshot name to its decoded BuildPlan:
// local file first, falling back to a flavor-keyed download when the local
// copy is absent or fails to decode.
package snaploader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kristoff3r/stack/internal/config"
	"github.com/kristoff3r/stack/internal/httpclient"
	"github.com/kristoff3r/stack/internal/log"
	"github.com/kristoff3r/stack/internal/progress"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// Loader resolves snapshot names to BuildPlans, using cfg's SnapshotsDir as
// the local-file cache and downloading from the flavor-keyed layout under
// config.GetRegistryURL (STACK_REGISTRY_URL overrides it) on a miss.
type Loader struct {
	cfg    *config.Config
	client *http.Client
	logger log.Logger
}

// New builds a Loader rooted at cfg.
func New(cfg *config.Config) *Loader {
	return &Loader{cfg: cfg, client: httpclient.New(), logger: log.Component("snaploader")}
}

// LoadBuildPlan resolves name to its BuildPlan: local file first, then
// download-by-flavor-URL on a miss.
func (l *Loader) LoadBuildPlan(ctx context.Context, name snapmodel.SnapName) (*snapmodel.BuildPlan, error) {
	path := l.cfg.SnapshotDocPath(name.String())

	if data, err := os.ReadFile(path); err == nil {
		plan, decodeErr := decodeBuildPlan(data)
		if decodeErr == nil {
			l.logger.Debug("loaded snapshot document from local cache", "snapshot", name, "path", path)
			return plan, nil
		}
		l.logger.Warn("local snapshot document failed to decode, re-downloading", "snapshot", name, "path", path, "error", decodeErr)
	} else if !os.IsNotExist(err) {
		return nil, &LoaderError{Type: ErrTypeFilesystem, Snapshot: name.String(), Message: "failed to read local snapshot document", Err: err}
	}

	return l.download(ctx, name, path)
}

func (l *Loader) download(ctx context.Context, name snapmodel.SnapName, destPath string) (*snapmodel.BuildPlan, error) {
	url := fmt.Sprintf("%s/%s/master/%s.yaml", config.GetRegistryURL(), name.Flavor(), name.String())
	l.logger.Info("downloading snapshot document", "snapshot", name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: name.String(), Message: "failed to build request", Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: name.String(), Message: "failed to download snapshot document", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &LoaderError{Type: ErrTypeNotFound, Snapshot: name.String(), Message: "snapshot not found in directory", Err: ErrSnapshotNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: name.String(), Message: fmt.Sprintf("download returned status %d", resp.StatusCode)}
	}

	data, err := readWithProgress(resp.Body, name.String(), resp.ContentLength)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: name.String(), Message: "failed to read downloaded snapshot document", Err: err}
	}

	plan, err := decodeBuildPlan(data)
	if err != nil {
		// A decode failure on a freshly downloaded file is surfaced
		// unchanged, not retried or swallowed.
		return nil, &LoaderError{Type: ErrTypeParsing, Snapshot: name.String(), Message: "failed to decode downloaded snapshot document", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		l.logger.Warn("failed to create snapshot cache directory, not caching", "snapshot", name, "error", err)
		return plan, nil
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		l.logger.Warn("failed to cache downloaded snapshot document", "snapshot", name, "error", err)
	}

	return plan, nil
}

// LoadCustomSnapshot resolves source as a custom snapshot document: an
// HTTP(S) URL is downloaded into the content-addressed custom snapshot
// cache (keyed by SHA-256 of its contents); a "file://" or "file:"
// reference (or a bare relative path) is canonicalized against
// stackYamlDir and read directly, uncached.
func (l *Loader) LoadCustomSnapshot(ctx context.Context, source, stackYamlDir string) (*snapmodel.CustomSnapshot, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.loadCustomSnapshotFromURL(ctx, source)
	}

	path := strings.TrimPrefix(strings.TrimPrefix(source, "file://"), "file:")
	if !filepath.IsAbs(path) {
		path = filepath.Join(stackYamlDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeFilesystem, Snapshot: source, Message: "failed to read custom snapshot file", Err: err}
	}
	return l.decodeCustomSnapshotOrError(source, data)
}

func (l *Loader) loadCustomSnapshotFromURL(ctx context.Context, source string) (*snapmodel.CustomSnapshot, error) {
	if _, err := url.Parse(source); err != nil {
		return nil, &LoaderError{Type: ErrTypeFilesystem, Snapshot: source, Message: "invalid custom snapshot URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: source, Message: "failed to build request", Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: source, Message: "failed to download custom snapshot", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: source, Message: fmt.Sprintf("download returned status %d", resp.StatusCode)}
	}

	data, err := readWithProgress(resp.Body, source, resp.ContentLength)
	if err != nil {
		return nil, &LoaderError{Type: ErrTypeNetwork, Snapshot: source, Message: "failed to read downloaded custom snapshot", Err: err}
	}

	sum := sha256.Sum256(data)
	cachePath := filepath.Join(l.cfg.CustomSnapshotCacheDir, hex.EncodeToString(sum[:])+".yaml")
	if err := os.MkdirAll(l.cfg.CustomSnapshotCacheDir, 0755); err == nil {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			l.logger.Warn("failed to cache downloaded custom snapshot", "source", source, "error", err)
		}
	}

	return l.decodeCustomSnapshotOrError(source, data)
}

func (l *Loader) decodeCustomSnapshotOrError(source string, data []byte) (*snapmodel.CustomSnapshot, error) {
	snap, err := decodeCustomSnapshot(data)
	if err != nil {
		var invalidCompiler *InvalidCompilerError
		if errors.As(err, &invalidCompiler) {
			return nil, invalidCompiler
		}
		return nil, &LoaderError{Type: ErrTypeParsing, Snapshot: source, Message: "failed to decode custom snapshot", Err: err}
	}
	return snap, nil
}

// readWithProgress reads body to completion, rendering an in-place progress
// line on stderr when it is a terminal; otherwise it reads silently.
func readWithProgress(body io.Reader, label string, size int64) ([]byte, error) {
	if !progress.IsInteractive() {
		return io.ReadAll(body)
	}
	var buf bytes.Buffer
	pw := progress.NewWriter(&buf, label, size, os.Stderr)
	_, err := io.Copy(pw, body)
	pw.Finish()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
