package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	a := NewObjectKey("exercises/abc/", "image/png")
	b := NewObjectKey("exercises/abc", "image/png")

	assert.True(t, strings.HasPrefix(a, "exercises/abc/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestCheckMediaType(t *testing.T) {
	assert.NoError(t, CheckMediaType("image/jpeg"))
	assert.NoError(t, CheckMediaType("video/mp4"))
	assert.ErrorIs(t, CheckMediaType("application/pdf"), ErrUnsupportedContentType)
	assert.ErrorIs(t, CheckMediaType(""), ErrUnsupportedContentType)

	assert.NoError(t, CheckImageType("image/svg+xml"))
	assert.ErrorIs(t, CheckImageType("video/mp4"), ErrUnsupportedContentType)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("http://media.test")

	put, err := m.GeneratePresignedUploadURL(ctx, "logo/x.png", "image/png", 0)
	require.NoError(t, err)
	assert.Contains(t, put, "http://media.test/logo/x.png?")
	assert.Contains(t, put, "method=PUT")
	assert.Contains(t, put, "expires=900")

	require.NoError(t, m.DeleteObject(ctx, "logo/x.png"))
	assert.Equal(t, []string{"logo/x.png"}, m.Deleted())
}
