package predict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/internal/corpus"
)

// predictorFunc adapts a function to the Predictor interface.
type predictorFunc func(ctx context.Context, image []byte) ([]uieval.Box, error)

func (f predictorFunc) Predict(ctx context.Context, image []byte) ([]uieval.Box, error) {
	return f(ctx, image)
}

func TestBatch(t *testing.T) {
	imageDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "pred")

	for name, content := range map[string]string{
		"login.png":  "ok",
		"signup.JPG": "ok",
		"broken.png": "fail",
		"notes.txt":  "ignored",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(imageDir, name), []byte(content), 0o644))
	}

	p := predictorFunc(func(ctx context.Context, image []byte) ([]uieval.Box, error) {
		if string(image) == "fail" {
			return nil, errors.New("model unavailable")
		}
		return []uieval.Box{{Tag: "Button", X1: 1, Y1: 1, X2: 9, Y2: 9}}, nil
	})

	result, err := Batch(context.Background(), p, imageDir, outDir, 2, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"login.json", "signup.json"}, result.Written)
	assert.Equal(t, []string{"broken.png"}, result.Failed)

	data, err := os.ReadFile(filepath.Join(outDir, "login.json"))
	require.NoError(t, err)
	boxes, err := corpus.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []uieval.Box{{Tag: "Button", X1: 1, Y1: 1, X2: 9, Y2: 9}}, boxes)

	_, err = os.Stat(filepath.Join(outDir, "broken.json"))
	assert.True(t, os.IsNotExist(err), "failed images must not leave a prediction file")
}

func TestBatch_Cancelled(t *testing.T) {
	imageDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "a.png"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := predictorFunc(func(ctx context.Context, image []byte) ([]uieval.Box, error) {
		return nil, ctx.Err()
	})
	_, err := Batch(ctx, p, imageDir, t.TempDir(), 1, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpeg", "c.gif", "d.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	names, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpeg", "b.png", "c.gif"}, names)

	_, err = ListImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
