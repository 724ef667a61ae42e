// internal/artifacts/loader.go
package artifacts

import (
	"context"
	"errors"
	"strings"
	"time"

	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/common/metrics"
	"loan-approval-workers/internal/inference"
)

// Names maps every artifact to the blob name it is stored under.
type Names struct {
	Encoders   map[string]string
	Scaler     string
	Classifier string
	Columns    string
}

// EncoderFields lists the fields that need a label encoder, in load order.
func EncoderFields() []string {
	return append(append([]string(nil), inference.CategoricalFields...), inference.FieldLoanStatus)
}

func DefaultNames() Names {
	n := Names{
		Encoders:   make(map[string]string, len(inference.CategoricalFields)+1),
		Scaler:     "scaler.json",
		Classifier: "classifier.json",
		Columns:    "columns.json",
	}
	for _, field := range EncoderFields() {
		n.Encoders[field] = "label_encoder_" + field + ".json"
	}
	return n
}

// NamesFromConfig applies configured overrides on top of DefaultNames.
func NamesFromConfig(cfg config.ArtifactNames) Names {
	n := DefaultNames()
	if cfg.Scaler != "" {
		n.Scaler = cfg.Scaler
	}
	if cfg.Classifier != "" {
		n.Classifier = cfg.Classifier
	}
	if cfg.Columns != "" {
		n.Columns = cfg.Columns
	}
	for key, name := range cfg.Encoders {
		if name == "" {
			continue
		}
		for _, field := range EncoderFields() {
			if strings.EqualFold(key, field) {
				n.Encoders[field] = name
			}
		}
	}
	return n
}

// All returns every blob name in load order.
func (n Names) All() []string {
	names := make([]string, 0, len(n.Encoders)+3)
	for _, field := range EncoderFields() {
		names = append(names, n.Encoders[field])
	}
	return append(names, n.Scaler, n.Classifier, n.Columns)
}

// Loader reads and decodes the full artifact set from a Store.
type Loader struct {
	store  Store
	names  Names
	logger logger.Logger
}

func NewLoader(store Store, names Names, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Loader{store: store, names: names, logger: log}
}

// LoadAll loads every artifact. The first failure is returned as an
// *ArtifactLoadError naming the blob.
func (l *Loader) LoadAll(ctx context.Context) (inference.Artifacts, error) {
	start := time.Now()
	loaded := 0

	art := inference.Artifacts{
		Encoders: make(map[string]*inference.CategoricalEncoder, len(l.names.Encoders)),
	}

	for _, field := range EncoderFields() {
		name := l.names.Encoders[field]
		data, err := l.fetch(ctx, name)
		if err != nil {
			return inference.Artifacts{}, err
		}
		enc, err := DecodeEncoder(data)
		if err != nil {
			return inference.Artifacts{}, &ArtifactLoadError{Name: name, Err: err}
		}
		art.Encoders[field] = enc
		loaded++
	}

	data, err := l.fetch(ctx, l.names.Scaler)
	if err != nil {
		return inference.Artifacts{}, err
	}
	if art.Scaler, err = DecodeScaler(data); err != nil {
		return inference.Artifacts{}, &ArtifactLoadError{Name: l.names.Scaler, Err: err}
	}
	loaded++

	if data, err = l.fetch(ctx, l.names.Classifier); err != nil {
		return inference.Artifacts{}, err
	}
	if art.Classifier, err = inference.DecodeClassifier(data); err != nil {
		return inference.Artifacts{}, &ArtifactLoadError{Name: l.names.Classifier, Err: err}
	}
	loaded++

	if data, err = l.fetch(ctx, l.names.Columns); err != nil {
		return inference.Artifacts{}, err
	}
	if art.Columns, err = DecodeColumns(data); err != nil {
		return inference.Artifacts{}, &ArtifactLoadError{Name: l.names.Columns, Err: err}
	}
	loaded++

	metrics.ArtifactsLoaded.Set(float64(loaded))
	l.logger.Info("Model artifacts loaded", map[string]interface{}{
		"count":          loaded,
		"classifierKind": art.Classifier.Kind(),
		"duration":       time.Since(start).String(),
	})
	return art, nil
}

func (l *Loader) fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := l.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.logger.Error("Model artifact missing", map[string]interface{}{"artifact": name})
		}
		return nil, &ArtifactLoadError{Name: name, Err: err}
	}
	return data, nil
}

// LoadPipeline loads the artifacts and builds a pipeline from them.
func (l *Loader) LoadPipeline(ctx context.Context) (*inference.Pipeline, error) {
	art, err := l.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return inference.NewPipeline(art)
}
