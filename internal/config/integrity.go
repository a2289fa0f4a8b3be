package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const checksumsFile = ".checksums"

// ChecksumManifest records the authorized hash of the config file. It is
// written by `dmrelay config lock` and checked on every load.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// Lock writes a checksum manifest next to the config file, authorizing its
// current content.
func Lock(configPath string) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	hash, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	manifest := ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      map[string]string{filepath.Base(absPath): hash},
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal checksums: %w", err)
	}

	// Restrictive permissions: the manifest is the integrity anchor.
	path := filepath.Join(filepath.Dir(absPath), checksumsFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write checksums: %w", err)
	}
	return nil
}

// Verify checks the config file against its checksum manifest. A missing
// manifest is an error; use verifyIfLocked for the permissive variant.
func Verify(configPath string) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	manifest, err := loadChecksums(filepath.Dir(absPath))
	if os.IsNotExist(err) {
		return fmt.Errorf("checksums file not found (run 'dmrelay config lock')")
	}
	if err != nil {
		return err
	}
	return verifyAgainst(absPath, manifest)
}

// verifyIfLocked verifies the config file only when a manifest exists.
// An unlocked config loads without integrity checking.
func verifyIfLocked(absPath string) error {
	manifest, err := loadChecksums(filepath.Dir(absPath))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return verifyAgainst(absPath, manifest)
}

func loadChecksums(configDir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(configDir, checksumsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	return &manifest, nil
}

func verifyAgainst(absPath string, manifest *ChecksumManifest) error {
	name := filepath.Base(absPath)
	expected, ok := manifest.Hashes[name]
	if !ok {
		return fmt.Errorf("config file %s is not in the checksum manifest (run 'dmrelay config lock')", name)
	}

	actual, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s\n"+
			"The config changed since it was locked; review it and run 'dmrelay config lock'",
			name, expected, actual)
	}
	return nil
}
