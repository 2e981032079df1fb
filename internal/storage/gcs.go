package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSMusic serves tracks from a Cloud Storage bucket with a local
// download cache.
type GCSMusic struct {
	client   *storage.Client
	bucket   string
	musicDir string
	cacheDir string
}

func NewGCSMusic(ctx context.Context, bucket, musicDir, cacheDir string) (*GCSMusic, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSMusic{
		client:   client,
		bucket:   bucket,
		musicDir: musicDir,
		cacheDir: cacheDir,
	}, nil
}

func (s *GCSMusic) Close() error {
	return s.client.Close()
}

func (s *GCSMusic) RandomMusicTrack(ctx context.Context) (string, error) {
	tracks, err := s.listTracks(ctx)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", nil
	}

	remotePath := tracks[rand.Intn(len(tracks))]
	localPath := filepath.Join(s.cacheDir, filepath.Base(remotePath))

	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	if err := s.downloadObject(ctx, remotePath, localPath); err != nil {
		return "", fmt.Errorf("download music track: %w", err)
	}
	return localPath, nil
}

func (s *GCSMusic) listTracks(ctx context.Context) ([]string, error) {
	bkt := s.client.Bucket(s.bucket)
	query := &storage.Query{Prefix: s.musicDir}

	var tracks []string
	it := bkt.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		if isAudioFile(attrs.Name) {
			tracks = append(tracks, attrs.Name)
		}
	}
	return tracks, nil
}

func (s *GCSMusic) downloadObject(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	obj := s.client.Bucket(s.bucket).Object(remotePath)
	r, err := obj.NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open object: %w", err)
	}
	defer func() { _ = r.Close() }()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("copy object: %w", err)
	}
	return nil
}
