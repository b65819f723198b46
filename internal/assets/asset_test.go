package assets

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestAsset_Validate(t *testing.T) {
	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{"png ok", Asset{Data: pngBytes, ContentType: "image/png"}, false},
		{"declared jpg alias", Asset{Data: []byte("\xff\xd8\xff\xe0rest"), ContentType: "image/jpg"}, false},
		{"gif with params", Asset{Data: []byte("GIF89a......"), ContentType: "image/gif; charset=binary"}, false},
		{"empty", Asset{ContentType: "image/png"}, true},
		{"pdf declared", Asset{Data: pngBytes, ContentType: "application/pdf"}, true},
		{"text disguised as png", Asset{Data: []byte("hello world"), ContentType: "image/png"}, true},
		{"too large", Asset{Data: append(pngBytes, make([]byte, MaxSize)...), ContentType: "image/png"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAsset)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAsset_Extension(t *testing.T) {
	assert.Equal(t, ".png", Asset{Data: pngBytes}.Extension())
	assert.Equal(t, ".gif", Asset{Data: []byte("GIF87a......")}.Extension())
	assert.Equal(t, "", Asset{Data: []byte("plain text")}.Extension())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "portfolio/a.png", objectKey("/portfolio/", "a.png"))
	assert.Equal(t, "a.png", objectKey("", "a.png"))
}

func TestLocalStore_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads/")
	ctx := context.Background()

	stored, err := store.Upload(ctx, Asset{Data: pngBytes, ContentType: "image/png"}, "portfolio")
	require.NoError(t, err)
	assert.Regexp(t, `^portfolio/[0-9a-f-]{36}\.png$`, stored.ID)
	assert.Equal(t, "/uploads/"+stored.ID, stored.URL)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(stored.ID)))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pngBytes, onDisk))

	require.NoError(t, store.Delete(ctx, stored.ID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.ID)))
	assert.True(t, os.IsNotExist(err))

	// second delete of the same id is a no-op
	assert.NoError(t, store.Delete(ctx, stored.ID))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")
	assert.Error(t, store.Delete(context.Background(), "../../etc/passwd"))
}
