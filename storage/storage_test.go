package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func fixedNow() time.Time { return time.UnixMilli(1700000000000) }

func fixedSuffix() string { return "abc123" }

func TestFileName(t *testing.T) {
	now := fixedNow()
	assert.Equal(t, "summer-hat-1700000000000-abc123.png", fileName("summer hat.png", "png", now, "abc123"))
	assert.Equal(t, "photo-1700000000000-abc123.jpeg", fileName("../../photo.jpg", "jpeg", now, "abc123"))
	assert.Equal(t, "image-1700000000000-abc123.png", fileName("", "png", now, "abc123"))
}

func TestShortIDIsUnique(t *testing.T) {
	a, b := shortID(), shortID()
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestDiskStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	store.now = fixedNow
	store.suffix = fixedSuffix

	url, err := store.Save(context.Background(), fileHeader(t, "red shoe.png", pngBytes), "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/public/uploads/red-shoe-1700000000000-abc123.png", url)

	written, err := os.ReadFile(filepath.Join(dir, "red-shoe-1700000000000-abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)
}

func TestDiskStoreSameNameUploadsKeepBothFiles(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	first := append(append([]byte{}, pngBytes...), 'A')
	second := append(append([]byte{}, pngBytes...), 'B')

	u1, err := store.Save(context.Background(), fileHeader(t, "a.png", first), "http://h")
	require.NoError(t, err)
	u2, err := store.Save(context.Background(), fileHeader(t, "a.png", second), "http://h")
	require.NoError(t, err)
	require.NotEqual(t, u1, u2)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	n1, err := nameFromURL(u1)
	require.NoError(t, err)
	n2, err := nameFromURL(u2)
	require.NoError(t, err)
	got1, err := os.ReadFile(filepath.Join(store.Dir(), n1))
	require.NoError(t, err)
	got2, err := os.ReadFile(filepath.Join(store.Dir(), n2))
	require.NoError(t, err)
	assert.Equal(t, first, got1)
	assert.Equal(t, second, got2)
}

func TestDiskStoreNeverOverwrites(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	store.now = fixedNow
	store.suffix = fixedSuffix

	_, err = store.Save(context.Background(), fileHeader(t, "a.png", pngBytes), "http://h")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), fileHeader(t, "a.png", append(append([]byte{}, pngBytes...), 'X')), "http://h")
	assert.Error(t, err)

	written, err := os.ReadFile(filepath.Join(store.Dir(), "a-1700000000000-abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)
}

func TestDiskStoreRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Save(context.Background(), fileHeader(t, "a.png", pngBytes), "http://h")
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), url))
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.NoError(t, store.Remove(context.Background(), url))
	assert.Error(t, store.Remove(context.Background(), "http://h/"))
}

func TestDiskStoreRejectsNonImage(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), fileHeader(t, "notes.png", []byte("just some text")), "http://h")
	assert.ErrorIs(t, err, ErrInvalidImageType)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeS3 struct {
	input   *s3.PutObjectInput
	deleted *s3.DeleteObjectInput
	body    []byte
	err     error
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = in
	return &s3.DeleteObjectOutput{}, f.err
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoreSave(t *testing.T) {
	client := &fakeS3{}
	store := &S3Store{client: client, bucket: "shop", region: "eu-west-1", now: fixedNow, suffix: fixedSuffix}

	url, err := store.Save(context.Background(), fileHeader(t, "boot.jpg", jpegBytes), "ignored")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com/products/boot-1700000000000-abc123.jpeg", url)
	assert.Equal(t, "shop", *client.input.Bucket)
	assert.Equal(t, "products/boot-1700000000000-abc123.jpeg", *client.input.Key)
	assert.Equal(t, "image/jpeg", *client.input.ContentType)
	assert.Equal(t, jpegBytes, client.body)

	require.NoError(t, store.Remove(context.Background(), url))
	assert.Equal(t, "shop", *client.deleted.Bucket)
	assert.Equal(t, "products/boot-1700000000000-abc123.jpeg", *client.deleted.Key)
}

func TestS3StoreUploadError(t *testing.T) {
	store := &S3Store{client: &fakeS3{err: errors.New("denied")}, bucket: "shop", region: "eu-west-1", now: fixedNow, suffix: fixedSuffix}

	_, err := store.Save(context.Background(), fileHeader(t, "boot.png", pngBytes), "")
	assert.Error(t, err)
}
