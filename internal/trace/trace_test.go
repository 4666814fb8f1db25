package trace

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
)

func TestRedactMasksSensitiveKeys(t *testing.T) {
	in := map[string]any{
		"password": "secret123",
		"site":     "demo",
	}
	out := Redact(in)

	assert.Equal(t, Mask, out["password"])
	assert.Equal(t, "demo", out["site"])
	// The input is untouched.
	assert.Equal(t, "secret123", in["password"])
}

func TestRedactAllSensitiveKeys(t *testing.T) {
	in := map[string]any{
		"password":    "a",
		"passcode":    "b",
		"card_number": "4111111111111111",
		"card_cvv":    "123",
		"cvv":         "456",
		"product":     "backpack",
	}
	out := Redact(in)
	for key := range in {
		if key == "product" {
			assert.Equal(t, "backpack", out[key])
			continue
		}
		assert.Equal(t, Mask, out[key], key)
	}
}

func TestRedactNested(t *testing.T) {
	out := Redact(map[string]any{
		"card": map[string]any{
			"card_number": "4111",
			"name":        "QA Bot",
		},
	})
	card, ok := out["card"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Mask, card["card_number"])
	assert.Equal(t, "QA Bot", card["name"])
}

func TestWriterAppendsRedactedJSONL(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	it := intent.New(intent.KindLogin, map[string]any{
		"password": "secret123",
		"site":     "demo",
	})
	require.NoError(t, w.Append("log me in", it))

	var rec Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "log me in", rec.RawText)
	assert.Equal(t, "login", rec.Intent)
	assert.Equal(t, Mask, rec.Entities["password"])
	assert.Equal(t, "demo", rec.Entities["site"])
}

func TestWriterAppendsOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Append("first", intent.New(intent.KindUnknown, nil)))
	require.NoError(t, w.Append("second", intent.New(intent.KindUnknown, nil)))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
}
