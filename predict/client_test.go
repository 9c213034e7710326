package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uieval "github.com/jamesainslie/go-uieval"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeChat serves /chat/completions with a fixed assistant reply and
// records the last request body.
type fakeChat struct {
	reply    string
	status   int
	requests atomic.Int32
	lastBody atomic.Value
}

func (f *fakeChat) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	body, _ := io.ReadAll(r.Body)
	f.lastBody.Store(body)

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error"}}`))
		return
	}

	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": f.reply,
			},
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, f *fakeChat, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithBaseURL(srv.URL + "/"),
		WithRequestOptions(option.WithMaxRetries(0)),
		WithLogger(quietLogger()),
	}, opts...)

	c, err := NewClient("sk-test", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_NoAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestExtractBoxes(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []uieval.Box
		wantErr bool
	}{
		{
			name:  "bare array",
			reply: `[{"tag": "Button", "x1": 10, "y1": 20, "x2": 100, "y2": 50}]`,
			want:  []uieval.Box{{Tag: "Button", X1: 10, Y1: 20, X2: 100, Y2: 50}},
		},
		{
			name:  "json fence",
			reply: "Here you go:\n```json\n[{\"tag\": \"Input\", \"x1\": 1, \"y1\": 2, \"x2\": 3, \"y2\": 4}]\n```\nDone.",
			want:  []uieval.Box{{Tag: "Input", X1: 1, Y1: 2, X2: 3, Y2: 4}},
		},
		{
			name:  "plain fence",
			reply: "```\n[{\"tag\": \"Radio\", \"x1\": 0, \"y1\": 0, \"x2\": 5, \"y2\": 5}]\n```",
			want:  []uieval.Box{{Tag: "Radio", X1: 0, Y1: 0, X2: 5, Y2: 5}},
		},
		{
			name:  "empty array",
			reply: "```json\n[]\n```",
			want:  []uieval.Box{},
		},
		{
			name:    "prose only",
			reply:   "I could not find any UI elements.",
			wantErr: true,
		},
		{
			name:    "single quoted",
			reply:   "[{'tag': 'Button', 'x1': 1, 'y1': 1, 'x2': 2, 'y2': 2}]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBoxes(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Predict(t *testing.T) {
	f := &fakeChat{reply: "```json\n[{\"tag\": \"Button\", \"x1\": 1, \"y1\": 2, \"x2\": 30, \"y2\": 40}]\n```"}
	c := newTestClient(t, f, WithModel("gpt-4o-mini"), WithMaxTokens(256))

	boxes, err := c.Predict(context.Background(), pngImage(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, []uieval.Box{{Tag: "Button", X1: 1, Y1: 2, X2: 30, Y2: 40}}, boxes)

	var req map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody.Load().([]byte), &req))
	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.EqualValues(t, 256, req["max_tokens"])

	body := string(f.lastBody.Load().([]byte))
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, "Only detect: Button, Input, Radio, Dropdown")
}

func TestClient_PredictCustomPrompt(t *testing.T) {
	f := &fakeChat{reply: "[]"}
	c := newTestClient(t, f, WithPrompt("Detect only buttons."), WithPrompt(""))

	boxes, err := c.Predict(context.Background(), pngImage(t, 8, 8))
	require.NoError(t, err)
	assert.Empty(t, boxes)

	body := string(f.lastBody.Load().([]byte))
	assert.Contains(t, body, "Detect only buttons.")
	assert.NotContains(t, body, "Only detect: Button, Input, Radio, Dropdown")
}

func TestClient_PredictUnparseableReply(t *testing.T) {
	f := &fakeChat{reply: "Sorry, I can't help with that."}
	c := newTestClient(t, f)

	boxes, err := c.Predict(context.Background(), pngImage(t, 8, 8))
	require.NoError(t, err)
	assert.Empty(t, boxes)
	assert.NotNil(t, boxes)
}

func TestClient_PredictAPIError(t *testing.T) {
	f := &fakeChat{status: http.StatusBadRequest}
	c := newTestClient(t, f)

	_, err := c.Predict(context.Background(), pngImage(t, 8, 8))
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.EqualValues(t, 1, f.requests.Load())
}

func TestClient_PredictScalesBack(t *testing.T) {
	// 200x100 fit into 50x50 becomes 50x25, a factor of 4.
	f := &fakeChat{reply: `[{"tag": "dropdown", "x1": 10, "y1": 5, "x2": 20, "y2": 10}]`}
	c := newTestClient(t, f, WithMaxSide(50))

	boxes, err := c.Predict(context.Background(), pngImage(t, 200, 100))
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, uieval.Box{Tag: "dropdown", X1: 40, Y1: 20, X2: 80, Y2: 40}, boxes[0])
}

func TestScaleBoxes(t *testing.T) {
	in := []uieval.Box{{Tag: "Input", X1: 10, Y1: 10, X2: 20, Y2: 34}}

	got := scaleBoxes(in, 3, 101.0/34)
	require.Len(t, got, 1)
	assert.Equal(t, "Input", got[0].Tag)
	assert.InDelta(t, 30, got[0].X1, 1e-9)
	assert.InDelta(t, 60, got[0].X2, 1e-9)
	assert.InDelta(t, 1010.0/34, got[0].Y1, 1e-9)
	assert.InDelta(t, 101, got[0].Y2, 1e-9)

	assert.Equal(t, in, scaleBoxes(in, 1, 1))
}

func TestPrepareImage(t *testing.T) {
	small := pngImage(t, 20, 10)

	img, err := prepareImage(small, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, img.scaleX)
	assert.Equal(t, 1.0, img.scaleY)
	assert.Equal(t, small, img.data)
	assert.Equal(t, "image/png", img.mime)

	img, err = prepareImage(small, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, img.scaleX, "images within the limit are sent untouched")
	assert.Equal(t, 1.0, img.scaleY)

	img, err = prepareImage(pngImage(t, 300, 150), 100)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, img.scaleX, 1e-9)
	assert.InDelta(t, 3.0, img.scaleY, 1e-9)
	decoded, err := png.Decode(bytes.NewReader(img.data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())

	// 300x101 fits to 100x34: the height rounds, so each axis keeps its own factor.
	img, err = prepareImage(pngImage(t, 300, 101), 100)
	require.NoError(t, err)
	decoded, err = png.Decode(bytes.NewReader(img.data))
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
	assert.InDelta(t, 3.0, img.scaleX, 1e-9)
	assert.InDelta(t, 101/float64(decoded.Bounds().Dy()), img.scaleY, 1e-9)
	assert.NotEqual(t, img.scaleX, img.scaleY)

	_, err = prepareImage([]byte("not an image"), 100)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = prepareImage(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidImage)
}
