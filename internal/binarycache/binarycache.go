// Package binarycache implements the on-disk cache envelope for
// materialized snapshots: a schema-tagged, gob-encoded, zstd-compressed
// blob written atomically (temp file plus rename) and decoded back into a
// MiniPlan on a cache hit. Any decode failure — missing file, tag
// mismatch, corrupt payload — is treated as a cache miss, never a fatal
// error, so a stale or damaged envelope just costs a rebuild.
package binarycache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/kristoff3r/stack/internal/log"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// SchemaTag is bumped whenever the on-disk envelope's decoded shape
// changes incompatibly. A stored envelope whose tag doesn't match the
// current SchemaTag is treated as a cache miss. It is a var, not a const,
// so tests can simulate a schema bump without writing a second envelope
// format by hand.
var SchemaTag = "stack-miniplan-v1"

// gobPlan is the gob-friendly mirror of snapmodel.MiniPlan: MiniPlan itself
// holds unexported fields inside Version/CompilerVersion (backed by
// semver.Version), so the envelope encodes plain strings and reconstructs
// the real types with ParseVersion/ParseCompilerVersion on decode.
type gobPlan struct {
	CompilerVersion string
	Packages        map[string]gobPackageInfo
}

type gobPackageInfo struct {
	Version     string
	Flags       map[string]bool
	PackageDeps []string
	ToolDeps    []string
	Exes        []string
	HasLibrary  bool
}

func toGob(plan *snapmodel.MiniPlan) gobPlan {
	out := gobPlan{
		CompilerVersion: plan.CompilerVersion.String(),
		Packages:        make(map[string]gobPackageInfo, len(plan.Packages)),
	}
	for name, info := range plan.Packages {
		gi := gobPackageInfo{
			Version:    info.Version.String(),
			Flags:      make(map[string]bool, len(info.Flags)),
			HasLibrary: info.HasLibrary,
		}
		for f, v := range info.Flags {
			gi.Flags[string(f)] = v
		}
		for d := range info.PackageDeps {
			gi.PackageDeps = append(gi.PackageDeps, string(d))
		}
		for t := range info.ToolDeps {
			gi.ToolDeps = append(gi.ToolDeps, string(t))
		}
		for e := range info.Exes {
			gi.Exes = append(gi.Exes, string(e))
		}
		out.Packages[string(name)] = gi
	}
	return out
}

func fromGob(g gobPlan) (*snapmodel.MiniPlan, error) {
	cv, err := snapmodel.ParseCompilerVersion(g.CompilerVersion)
	if err != nil {
		return nil, fmt.Errorf("binarycache: decoding compiler version: %w", err)
	}
	plan := snapmodel.NewMiniPlan(cv)
	for name, gi := range g.Packages {
		version, err := snapmodel.ParseVersion(gi.Version)
		if err != nil {
			return nil, fmt.Errorf("binarycache: decoding version for %s: %w", name, err)
		}
		flags := make(snapmodel.FlagAssignment, len(gi.Flags))
		for f, v := range gi.Flags {
			flags[snapmodel.FlagName(f)] = v
		}
		deps := make(map[snapmodel.PackageName]struct{}, len(gi.PackageDeps))
		for _, d := range gi.PackageDeps {
			deps[snapmodel.PackageName(d)] = struct{}{}
		}
		tools := make(map[snapmodel.ToolName]struct{}, len(gi.ToolDeps))
		for _, t := range gi.ToolDeps {
			tools[snapmodel.ToolName(t)] = struct{}{}
		}
		exes := make(map[snapmodel.ExeName]struct{}, len(gi.Exes))
		for _, e := range gi.Exes {
			exes[snapmodel.ExeName(e)] = struct{}{}
		}
		plan.Packages[snapmodel.PackageName(name)] = snapmodel.NewMiniPackageInfo(
			snapmodel.PackageName(name), version, flags, deps, tools, exes, gi.HasLibrary,
		)
	}
	return plan, nil
}

type envelopeHeader struct {
	Tag string
}

// Write encodes plan into the versioned, compressed envelope and writes it
// to path atomically via a temp-file-plus-rename in the same directory.
func Write(path string, plan *snapmodel.MiniPlan) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(toGob(plan)); err != nil {
		return fmt.Errorf("binarycache: encoding payload: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelopeHeader{Tag: SchemaTag}); err != nil {
		return fmt.Errorf("binarycache: encoding header: %w", err)
	}

	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("binarycache: creating compressor: %w", err)
	}
	if _, err := zw.Write(payload.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("binarycache: compressing payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("binarycache: closing compressor: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("binarycache: creating cache directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp", uuid.NewString()))
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("binarycache: writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("binarycache: replacing cache file: %w", err)
	}
	return nil
}

// Read decodes the envelope at path. A missing file, a tag mismatch, or any
// decode error returns (nil, false, nil) — a cache miss, not an error —
// except for I/O errors unrelated to absence, which are returned as an
// error so callers can distinguish "go rebuild" from "disk is broken".
func Read(path string) (*snapmodel.MiniPlan, bool, error) {
	logger := log.Component("binarycache")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("binarycache: opening cache file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, false, fmt.Errorf("binarycache: reading cache file: %w", err)
	}

	br := bytes.NewReader(raw)
	dec := gob.NewDecoder(br)
	var header envelopeHeader
	if err := dec.Decode(&header); err != nil {
		logger.Warn("malformed header, treating as cache miss", "path", path, "error", err)
		return nil, false, nil
	}
	if header.Tag != SchemaTag {
		logger.Warn("schema tag mismatch, rebuilding", "path", path, "got", header.Tag, "want", SchemaTag)
		return nil, false, nil
	}

	// br.Len() reports exactly how much of raw the gob decoder left
	// unread; that remainder is the zstd-compressed payload.
	remaining := raw[len(raw)-br.Len():]
	zr, err := zstd.NewReader(bytes.NewReader(remaining))
	if err != nil {
		logger.Warn("corrupt compressed payload, treating as cache miss", "path", path, "error", err)
		return nil, false, nil
	}
	defer zr.Close()

	decompressed, err := io.ReadAll(zr)
	if err != nil {
		logger.Warn("decompression failed, treating as cache miss", "path", path, "error", err)
		return nil, false, nil
	}

	var g gobPlan
	if err := gob.NewDecoder(bytes.NewReader(decompressed)).Decode(&g); err != nil {
		logger.Warn("corrupt payload, treating as cache miss", "path", path, "error", err)
		return nil, false, nil
	}

	plan, err := fromGob(g)
	if err != nil {
		logger.Warn("could not reconstruct plan, treating as cache miss", "path", path, "error", err)
		return nil, false, nil
	}
	return plan, true, nil
}

