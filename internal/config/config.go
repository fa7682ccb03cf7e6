// Package config centralizes the environment-tunable knobs and on-disk
// layout for the build-plan resolution core: env vars with validated
// ranges, warnings on out-of-range input, and a Config struct describing
// where things live on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// EnvStackRoot overrides the default on-disk root.
	EnvStackRoot = "STACK_ROOT"

	// EnvAPITimeout configures the HTTP timeout used for snapshot index,
	// snapshot document, and cabal-file fetches.
	EnvAPITimeout = "STACK_API_TIMEOUT"

	// EnvSnapshotCacheTTL configures the TTL hint used to suggest a
	// background MiniPlan refresh.
	EnvSnapshotCacheTTL = "STACK_SNAPSHOT_CACHE_TTL"

	// EnvRegistryURL overrides the base URL for the snapshot index document.
	EnvRegistryURL = "STACK_REGISTRY_URL"

	// DefaultAPITimeout is used when STACK_API_TIMEOUT is unset or invalid.
	DefaultAPITimeout = 30 * time.Second

	// DefaultSnapshotCacheTTL is used when STACK_SNAPSHOT_CACHE_TTL is unset or invalid.
	DefaultSnapshotCacheTTL = 24 * time.Hour

	// DefaultRegistryURL points at the canonical raw-content host for
	// snapshot documents.
	DefaultRegistryURL = "https://raw.githubusercontent.com/fpco"
)

// GetAPITimeout returns the configured HTTP timeout from STACK_API_TIMEOUT,
// clamped to [1s, 10m]. Falls back to DefaultAPITimeout on missing or
// unparseable input.
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	d, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n", EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}
	if d < 1*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n", EnvAPITimeout, d)
		return 1 * time.Second
	}
	if d > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n", EnvAPITimeout, d)
		return 10 * time.Minute
	}
	return d
}

// GetSnapshotCacheTTL returns the configured TTL from STACK_SNAPSHOT_CACHE_TTL,
// clamped to [5m, 7d]. The TTL only affects whether callers suggest a
// background refresh; cache validity is always checked structurally via
// the binary cache's schema tag.
func GetSnapshotCacheTTL() time.Duration {
	envValue := os.Getenv(EnvSnapshotCacheTTL)
	if envValue == "" {
		return DefaultSnapshotCacheTTL
	}

	d, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n", EnvSnapshotCacheTTL, envValue, DefaultSnapshotCacheTTL)
		return DefaultSnapshotCacheTTL
	}
	if d < 5*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 5m\n", EnvSnapshotCacheTTL, d)
		return 5 * time.Minute
	}
	if d > 7*24*time.Hour {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 7d\n", EnvSnapshotCacheTTL, d)
		return 7 * 24 * time.Hour
	}
	return d
}

// GetRegistryURL returns the configured snapshot-index base URL.
func GetRegistryURL() string {
	if v := os.Getenv(EnvRegistryURL); v != "" {
		return v
	}
	return DefaultRegistryURL
}

// Config holds the on-disk layout for stack's caches and snapshot files.
type Config struct {
	StackRoot              string // $STACK_ROOT
	SnapshotsDir           string // $STACK_ROOT/snapshots (raw downloaded documents)
	SnapshotCacheDir       string // $STACK_ROOT/snapshot-cache (materialized MiniPlan envelopes)
	CustomSnapshotCacheDir string // $STACK_ROOT/custom-snapshot-cache (hash-addressed)
	PackageCachesDir       string // $STACK_ROOT/indices (package index caches)
	StackYamlPath          string // path to the project's stack.yaml, for resolving file:// snapshot sources
}

// DefaultConfig resolves STACK_ROOT (falling back to ~/.stack) and derives
// the rest of the layout from it.
func DefaultConfig() (*Config, error) {
	root := os.Getenv(EnvStackRoot)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".stack")
	}

	return &Config{
		StackRoot:              root,
		SnapshotsDir:           filepath.Join(root, "snapshots"),
		SnapshotCacheDir:       filepath.Join(root, "snapshot-cache"),
		CustomSnapshotCacheDir: filepath.Join(root, "custom-snapshot-cache"),
		PackageCachesDir:       filepath.Join(root, "indices"),
		StackYamlPath:          filepath.Join(".", "stack.yaml"),
	}, nil
}

// EnsureDirectories creates every directory the config layout names.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.StackRoot, c.SnapshotsDir, c.SnapshotCacheDir, c.CustomSnapshotCacheDir, c.PackageCachesDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SnapshotDocPath returns the path a downloaded snapshot document for name
// would be cached at.
func (c *Config) SnapshotDocPath(name string) string {
	return filepath.Join(c.SnapshotsDir, name+".yaml")
}

// MiniPlanCachePath returns the on-disk path for a snapshot's materialized
// MiniPlan cache envelope, keyed by snapshot name and compiler version.
func (c *Config) MiniPlanCachePath(snapshotName, compiler string) string {
	return filepath.Join(c.SnapshotCacheDir, fmt.Sprintf("%s-%s.plan", snapshotName, compiler))
}

// CustomMiniPlanCachePath returns the on-disk path for a custom snapshot's
// materialized MiniPlan cache envelope, keyed by the content hash used to
// cache its source document.
func (c *Config) CustomMiniPlanCachePath(contentHash string) string {
	return filepath.Join(c.CustomSnapshotCacheDir, contentHash+".plan")
}
