package media

import (
	"context"
	"fmt"
	"time"

	"github.com/example/eshop-backend/domain/apperr"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

// ObjectStore is the subset of object storage used for uploads.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, headers map[string]string) error
	Get(name string) ([]byte, map[string]string, error)
	Delete(name string) error
}

// bucketStore stores uploads in an fs-jetstream bucket.
type bucketStore struct {
	bucket fsjetstream.FileStoragePort
}

func newBucketStore(bucket fsjetstream.FileStoragePort) *bucketStore {
	return &bucketStore{bucket: bucket}
}

func (s *bucketStore) Put(ctx context.Context, name string, data []byte, headers map[string]string) error {
	headers["Uploaded-At"] = time.Now().Format(time.RFC3339)
	_, err := s.bucket.Put(ctx, name, data,
		fsjetstream.WithDescription(fmt.Sprintf("Upload: %s", headers["Original-Name"])),
		fsjetstream.WithHeaders(headers),
	)
	if err != nil {
		return fmt.Errorf("%w: store %s: %v", apperr.ErrPersistence, name, err)
	}
	return nil
}

func (s *bucketStore) Get(name string) ([]byte, map[string]string, error) {
	obj, err := s.find(name)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.bucket.Get(obj.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", apperr.ErrPersistence, name, err)
	}
	return data, obj.Headers, nil
}

func (s *bucketStore) Delete(name string) error {
	obj, err := s.find(name)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(obj.Name); err != nil {
		return fmt.Errorf("%w: delete %s: %v", apperr.ErrPersistence, name, err)
	}
	return nil
}

func (s *bucketStore) find(name string) (*fsjetstream.ObjectInfo, error) {
	objects, err := s.bucket.List(fsjetstream.WithPrefix(name))
	if err != nil {
		return nil, fmt.Errorf("%w: list uploads: %v", apperr.ErrPersistence, err)
	}
	for i := range objects {
		if objects[i].Name == name {
			return &objects[i], nil
		}
	}
	return nil, ErrUploadNotFound
}
