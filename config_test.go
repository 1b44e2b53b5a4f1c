package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMustConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MONGO_DB", "MODEL_PROVIDER", "MODEL_TIMEOUT", "DEFAULT_REGION", "PHOTO_S3_ENDPOINT"} {
		t.Setenv(k, "")
	}
	c := mustConfig()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "fasaldoc", c.MongoDB)
	assert.Equal(t, "groq", c.ModelProvider)
	assert.Equal(t, 60*time.Second, c.ModelTimeout)
	assert.Equal(t, "Maharashtra", c.DefaultRegion)
	assert.False(t, c.Photos.Enabled())
}

func TestMustConfigOverrides(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "Gemini")
	t.Setenv("MODEL_TIMEOUT", "90")
	t.Setenv("PHOTO_S3_ENDPOINT", "minio:9000")
	t.Setenv("PHOTO_S3_USE_SSL", "true")
	c := mustConfig()
	assert.Equal(t, "gemini", c.ModelProvider)
	assert.Equal(t, 90*time.Second, c.ModelTimeout)
	assert.True(t, c.Photos.Enabled())
	assert.True(t, c.Photos.UseSSL)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "2m")
	assert.Equal(t, 2*time.Minute, getduration("X_TIMEOUT", time.Second))
	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getduration("X_TIMEOUT", time.Second))
}

func TestNewGatewayRequiresKeys(t *testing.T) {
	_, err := newGateway(t.Context(), Config{ModelProvider: "groq"}, nopLogger())
	assert.Error(t, err)
	_, err = newGateway(t.Context(), Config{ModelProvider: "gemini"}, nopLogger())
	assert.Error(t, err)
	_, err = newGateway(t.Context(), Config{ModelProvider: "openai"}, nopLogger())
	assert.Error(t, err)

	gw, err := newGateway(t.Context(), Config{ModelProvider: "groq", GroqAPIKey: "k", GroqModel: "m"}, nopLogger())
	assert.NoError(t, err)
	assert.Equal(t, "groq:m", gw.Name())
}
