package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(data)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store := NewS3StoreWithClient(client, S3Config{Bucket: "blog", Region: "eu-west-3", Prefix: "images/"})

	url, err := store.Upload(ctx, "Cover.JPG", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "https://blog.s3.eu-west-3.amazonaws.com/images/") {
		t.Fatalf("url = %q", url)
	}

	publicID := PublicIDFromURL(url)
	key := "images/" + publicID
	if client.objects[key] != "jpeg" || client.types[key] != "image/jpeg" {
		t.Fatalf("stored %q as %q", client.objects[key], client.types[key])
	}

	if err := store.Delete(ctx, publicID); err != nil {
		t.Fatal(err)
	}
	if len(client.objects) != 0 {
		t.Fatalf("objects left: %v", client.objects)
	}
}

func TestS3StorePublicBaseURLAndErrors(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store := NewS3StoreWithClient(client, S3Config{Bucket: "blog", PublicBaseURL: "https://cdn.example.com/"})

	url, err := store.Upload(context.Background(), "noext", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example.com/"+PublicIDFromURL(url) {
		t.Fatalf("url = %q", url)
	}
	if client.types[PublicIDFromURL(url)] != "application/octet-stream" {
		t.Fatalf("content type = %q", client.types[PublicIDFromURL(url)])
	}

	client.putErr = errors.New("access denied")
	if _, err := store.Upload(context.Background(), "a.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected put error")
	}
}
