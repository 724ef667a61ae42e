// internal/artifacts/loader_test.go
package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"loan-approval-workers/internal/common/config"
	"loan-approval-workers/internal/common/logger"
	"loan-approval-workers/internal/inference"
	"loan-approval-workers/internal/inference/inferencetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNames(t *testing.T) {
	names := DefaultNames()
	assert.Equal(t, "label_encoder_Gender.json", names.Encoders[inference.FieldGender])
	assert.Equal(t, "label_encoder_Loan_Status.json", names.Encoders[inference.FieldLoanStatus])
	assert.Equal(t, "scaler.json", names.Scaler)
	assert.Len(t, names.All(), 10)
	assert.Equal(t, "columns.json", names.All()[9])
}

func TestNamesFromConfig(t *testing.T) {
	names := NamesFromConfig(config.ArtifactNames{
		// viper lowercases map keys
		Encoders:   map[string]string{"self_employed": "se.json", "gender": ""},
		Classifier: "model-v2.json",
	})
	assert.Equal(t, "se.json", names.Encoders[inference.FieldSelfEmployed])
	assert.Equal(t, "label_encoder_Gender.json", names.Encoders[inference.FieldGender])
	assert.Equal(t, "model-v2.json", names.Classifier)
	assert.Equal(t, "scaler.json", names.Scaler)
}

func TestLoader_LoadPipelineFromFixtures(t *testing.T) {
	loader := NewLoader(NewFileStore(copyFixtures(t)), DefaultNames(), logger.NewTestLogger(t))

	p, err := loader.LoadPipeline(context.Background())
	require.NoError(t, err)

	result, err := p.Predict(inferencetest.Record())
	require.NoError(t, err)
	assert.Equal(t, inference.Approved, result)

	noCredit := inferencetest.Record()
	noCredit.CreditHistory = 0
	result, err = p.Predict(noCredit)
	require.NoError(t, err)
	assert.Equal(t, inference.Rejected, result)

	assert.Equal(t, inference.KindRandomForest, p.Describe().ClassifierKind)
}

func TestLoader_LoadAll_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, dir string)
		artifact string
		target   error
	}{
		{
			name:     "missing encoder",
			mutate:   func(t *testing.T, dir string) { require.NoError(t, os.Remove(filepath.Join(dir, "label_encoder_Married.json"))) },
			artifact: "label_encoder_Married.json",
			target:   ErrNotFound,
		},
		{
			name:     "missing columns",
			mutate:   func(t *testing.T, dir string) { require.NoError(t, os.Remove(filepath.Join(dir, "columns.json"))) },
			artifact: "columns.json",
			target:   ErrNotFound,
		},
		{
			name: "corrupt scaler",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "scaler.json"), []byte("{not json"), 0o644))
			},
			artifact: "scaler.json",
		},
		{
			name: "unknown classifier kind",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "classifier.json"), []byte(`{"kind":"svm"}`), 0o644))
			},
			artifact: "classifier.json",
		},
		{
			name: "empty encoder classes",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "label_encoder_Gender.json"), []byte(`{"field":"Gender","classes":[]}`), 0o644))
			},
			artifact: "label_encoder_Gender.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := copyFixtures(t)
			tt.mutate(t, dir)

			_, err := NewLoader(NewFileStore(dir), DefaultNames(), nil).LoadAll(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrArtifactLoad)

			var loadErr *ArtifactLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.artifact, loadErr.Name)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoader_SchemaMismatchSurfacesFromPipeline(t *testing.T) {
	dir := copyFixtures(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "columns.json"), []byte(`["Gender","Married"]`), 0o644))

	_, err := NewLoader(NewFileStore(dir), DefaultNames(), nil).LoadPipeline(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, inference.ErrSchemaMismatch)
	assert.NotErrorIs(t, err, ErrArtifactLoad)
}

func TestLoader_FromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	src := NewFileStore(copyFixtures(t))
	dst := NewRedisStore(client, "loan-model:")

	n, err := Publish(ctx, src, dst, DefaultNames())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultNames().All()), n)

	p, err := NewLoader(dst, DefaultNames(), nil).LoadPipeline(ctx)
	require.NoError(t, err)

	result, err := p.Predict(inferencetest.Record())
	require.NoError(t, err)
	assert.Equal(t, inference.Approved, result)
}

func TestPublish_StopsOnMissingSource(t *testing.T) {
	dir := copyFixtures(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "scaler.json")))

	dst := NewFileStore(t.TempDir())
	n, err := Publish(context.Background(), NewFileStore(dir), dst, DefaultNames())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, len(EncoderFields()), n)
}

func TestEncodeDecodeEncoder(t *testing.T) {
	enc, err := inference.NewCategoricalEncoder("Property_Area", []string{"Rural", "Semiurban", "Urban"})
	require.NoError(t, err)

	data, err := EncodeEncoder(enc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"Property_Area","classes":["Rural","Semiurban","Urban"]}`, string(data))

	decoded, err := DecodeEncoder(data)
	require.NoError(t, err)
	assert.Equal(t, enc.Classes(), decoded.Classes())
}

func TestDecodeScaler_RejectsOtherKinds(t *testing.T) {
	_, err := DecodeScaler([]byte(`{"kind":"min_max_scaler","mean":[0],"scale":[1]}`))
	assert.Error(t, err)
}

func TestOpenBackend_File(t *testing.T) {
	cfg := &config.Config{Artifacts: config.ArtifactsConfig{Dir: copyFixtures(t)}}
	store, closer, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closer.Close()

	_, err = store.Load(context.Background(), "scaler.json")
	assert.NoError(t, err)

	_, _, err = OpenBackend(context.Background(), cfg, "s3")
	assert.Error(t, err)
}
