package services

import (
	"context"
	"testing"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/abc123.jpg", "abc123"},
		{"https://res.cloudinary.com/demo/image/upload/abc123.tar.gz", "abc123"},
		{"https://cdn.example.com/images/0b6f7c1e?v=2", "0b6f7c1e"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PublicIDFromURL(tt.url); got != tt.want {
			t.Errorf("PublicIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNewMediaStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	store, err := NewMediaStoreFromConfig(ctx, map[string]string{})
	if err != nil || store != nil {
		t.Fatalf("unconfigured cloudinary = %v, %v", store, err)
	}
	store, err = NewMediaStoreFromConfig(ctx, map[string]string{"MEDIA_BACKEND": "s3"})
	if err != nil || store != nil {
		t.Fatalf("unconfigured s3 = %v, %v", store, err)
	}

	store, err = NewMediaStoreFromConfig(ctx, map[string]string{"CLOUDINARY_CLOUD_NAME": "demo", "CLOUDINARY_UPLOAD_PRESET": "blog"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*CloudinaryStore); !ok {
		t.Fatalf("store = %T", store)
	}

	if _, err := NewMediaStoreFromConfig(ctx, map[string]string{"MEDIA_BACKEND": "ftp"}); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}
