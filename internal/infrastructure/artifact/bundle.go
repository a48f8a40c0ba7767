// Package artifact persists trained model bundles.
//
// A bundle is one JSON document holding the encoder, scaler and classifier of a
// single training run, stamped with a format version and a BLAKE2b-256 checksum.
// Saves go through a temp file and a rename, so a reader sees either the old
// bundle or the new one.
package artifact

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// FormatVersion is the bundle layout this build reads and writes
const FormatVersion = 1

// checksummed is the part of a bundle covered by the checksum
type checksummed struct {
	RunID        string                 `json:"run_id"`
	FeatureNames []string               `json:"feature_names"`
	Encoder      domain.EncoderState    `json:"encoder"`
	Scaler       domain.ScalerState     `json:"scaler"`
	Classifier   domain.ClassifierState `json:"classifier"`
}

// Checksum returns the hex BLAKE2b-256 digest of the bundle's model state
func Checksum(bundle *domain.ModelBundle) (string, error) {
	data, err := json.Marshal(checksummed{
		RunID:        bundle.RunID,
		FeatureNames: bundle.FeatureNames,
		Encoder:      bundle.Encoder,
		Scaler:       bundle.Scaler,
		Classifier:   bundle.Classifier,
	})
	if err != nil {
		return "", fmt.Errorf("encode bundle state: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Save stamps the version and checksum onto bundle and writes it atomically
func Save(path string, bundle *domain.ModelBundle) error {
	if bundle == nil {
		return fmt.Errorf("save bundle: nil bundle")
	}
	bundle.FormatVersion = FormatVersion
	checksum, err := Checksum(bundle)
	if err != nil {
		return err
	}
	bundle.Checksum = checksum

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bundle-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp bundle: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("install bundle: %w", err)
	}

	log.Printf("[BUNDLE] saved run %s to %s (%d bytes)", bundle.RunID, path, len(data))
	return nil
}

// Load reads a bundle and verifies its version, feature order and checksum
func Load(path string) (*domain.ModelBundle, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBundleNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var bundle domain.ModelBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	if bundle.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, this build reads %d",
			domain.ErrInvalidBundle, bundle.FormatVersion, FormatVersion)
	}
	if err := checkFeatureNames(bundle.FeatureNames); err != nil {
		return nil, err
	}

	want, err := Checksum(&bundle)
	if err != nil {
		return nil, err
	}
	if bundle.Checksum != want {
		return nil, fmt.Errorf("%w: checksum mismatch", domain.ErrInvalidBundle)
	}

	log.Printf("[BUNDLE] loaded run %s from %s", bundle.RunID, path)
	return &bundle, nil
}

func checkFeatureNames(names []string) error {
	if len(names) != domain.NumFeatures {
		return fmt.Errorf("%w: %d feature columns, want %d", domain.ErrInvalidBundle, len(names), domain.NumFeatures)
	}
	for i, name := range names {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("%w: feature column %d is %q, want %q",
				domain.ErrInvalidBundle, i, name, domain.FeatureNames[i])
		}
	}
	return nil
}
