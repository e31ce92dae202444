package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
	headers map[string]map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		objects: make(map[string][]byte),
		headers: make(map[string]map[string]string),
	}
}

func (m *memoryStore) Put(_ context.Context, name string, data []byte, headers map[string]string) error {
	m.objects[name] = data
	m.headers[name] = headers
	return nil
}

func (m *memoryStore) Get(name string) ([]byte, map[string]string, error) {
	data, ok := m.objects[name]
	if !ok {
		return nil, nil, ErrUploadNotFound
	}
	return data, m.headers[name], nil
}

func (m *memoryStore) Delete(name string) error {
	if _, ok := m.objects[name]; !ok {
		return ErrUploadNotFound
	}
	delete(m.objects, name)
	delete(m.headers, name)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegHeader() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
}

func newTestService(t *testing.T, maxSize int64) (*Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc, err := NewService(store, maxSize)
	require.NoError(t, err)
	return svc, store
}

func TestService_Save(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := context.Background()

	upload, err := svc.Save(ctx, "my phone.png", "image/png", pngBytes(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Name, "my-phone-"), upload.Name)
	assert.True(t, strings.HasSuffix(upload.Name, ".png"), upload.Name)
	assert.Equal(t, "image/png", upload.ContentType)
	assert.Equal(t, "my phone.png", store.headers[upload.Name]["Original-Name"])

	other, err := svc.Save(ctx, "my phone.png", "image/png", pngBytes(t))
	require.NoError(t, err)
	assert.NotEqual(t, upload.Name, other.Name, "names are unique")

	jpg, err := svc.Save(ctx, "cover.jpg", "image/jpg", jpegHeader())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(jpg.Name, ".jpg"), jpg.Name)

	jpeg, err := svc.Save(ctx, "cover.jpeg", "image/jpeg", jpegHeader())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(jpeg.Name, ".jpeg"), jpeg.Name)
}

func TestService_SaveRejects(t *testing.T) {
	svc, store := newTestService(t, 1024)
	ctx := context.Background()

	tests := []struct {
		name     string
		declared string
		data     []byte
		wantErr  error
	}{
		{"empty", "image/png", nil, apperr.ErrMissingAsset},
		{"declared gif", "image/gif", pngBytes(t), apperr.ErrInvalidAsset},
		{"declared pdf", "application/pdf", pngBytes(t), apperr.ErrInvalidAsset},
		{"text posing as png", "image/png", []byte("definitely not an image"), apperr.ErrInvalidAsset},
		{"too large", "image/jpeg", append(jpegHeader(), make([]byte, 2048)...), apperr.ErrInvalidAsset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "file.png", tt.declared, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, store.objects)
}

func TestService_OpenAndDelete(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	data := pngBytes(t)
	upload, err := svc.Save(ctx, "phone.png", "image/png", data)
	require.NoError(t, err)

	got, contentType, err := svc.Open(upload.Name)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, svc.Delete(upload.Name))
	_, _, err = svc.Open(upload.Name)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = svc.Open("../secret")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(""), apperr.ErrNotFound)
}

func TestURLAndNameFromURL(t *testing.T) {
	url := URL("http://localhost:3000/", "phone-abc.png")
	assert.Equal(t, "http://localhost:3000/public/uploads/phone-abc.png", url)
	assert.Equal(t, "phone-abc.png", NameFromURL(url))
	assert.Empty(t, NameFromURL("http://cdn.example.com/phone.png"))
	assert.Empty(t, NameFromURL("http://localhost/public/uploads/../x"))
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"phone.png", "phone"},
		{"my new  phone.jpeg", "my-new-phone"},
		{"../../etc/passwd", "passwd"},
		{"C:\\photos\\cover.jpg", "cover"},
		{"a.b.c.png", "abc"},
		{"", "image"},
		{"???.png", "image"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, baseName(tt.in))
		})
	}
}
