package model

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// ArtifactVersion is bumped whenever the envelope layout changes.
const ArtifactVersion = "1"

// Metadata describes a persisted model.
type Metadata struct {
	ModelType string
	Version   string
	RunID     string
	// Features holds the feature column names in training order.
	Features  []string
	NSamples  int
	CreatedAt time.Time
}

type envelope struct {
	Meta  Metadata
	Model Estimator
}

// Register makes a concrete estimator type known to the artifact codec.
// Model packages call it from init.
func Register(name string, value Estimator) {
	gob.RegisterName(name, value)
}

// Encode writes meta and est to w.
func Encode(w io.Writer, meta Metadata, est Estimator) error {
	if est == nil || !est.IsFitted() {
		return errors.NewModelError("model.Encode", "refusing to persist an unfitted model", nil)
	}
	if meta.Version == "" {
		meta.Version = ArtifactVersion
	}
	if err := gob.NewEncoder(w).Encode(&envelope{Meta: meta, Model: est}); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (Estimator, Metadata, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, Metadata{}, errors.Wrapf(errors.ErrCorruptArtifact, "failed to decode model: %v", err)
	}
	if env.Meta.Version != ArtifactVersion {
		return nil, env.Meta, errors.NewValidationError("artifact.version", "unsupported artifact version", env.Meta.Version)
	}
	if env.Model == nil || !env.Model.IsFitted() {
		return nil, env.Meta, errors.Wrap(errors.ErrCorruptArtifact, "artifact holds no fitted model")
	}
	return env.Model, env.Meta, nil
}

// SaveModel writes est to path, replacing any existing file. Missing parent
// directories are created. A ".xz" suffix compresses the artifact.
//
//	err := model.SaveModel("rf_model.gob", meta, forest)
func SaveModel(path string, meta Metadata, est Estimator) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create file for %s", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	var w io.Writer = bw
	var zw *xz.Writer
	if isCompressed(path) {
		if zw, err = xz.NewWriter(bw); err != nil {
			return errors.Wrap(err, "failed to start xz stream")
		}
		w = zw
	}

	if err = Encode(w, meta, est); err != nil {
		return err
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return errors.Wrap(err, "failed to finish xz stream")
		}
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move model into %s", path)
	}
	return nil
}

// LoadModel reads an artifact written by SaveModel.
//
//	est, meta, err := model.LoadModel("rf_model.gob")
func LoadModel(path string) (Estimator, Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Metadata{}, errors.Wrapf(errors.ErrArtifactNotFound, "%s", path)
		}
		return nil, Metadata{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	var r io.Reader = bufio.NewReader(file)
	if isCompressed(path) {
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, Metadata{}, errors.Wrapf(errors.ErrCorruptArtifact, "%s: %v", path, err)
		}
		r = zr
	}

	est, meta, err := Decode(r)
	if err != nil {
		return nil, meta, errors.Wrapf(err, "%s", path)
	}
	return est, meta, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xz")
}
