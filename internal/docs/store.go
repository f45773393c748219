// Package docs handles the document files attached to a family case:
// existence checks at ingestion time and the per-case folder
// reorganization that runs when a record is validated.
package docs

import (
	"context"
	"fmt"
	"path"
	"strings"

	"takaful/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// Store is the black-box mover contract: given file references, it checks
// and reorganizes them, returning the new references.
type Store interface {
	Exists(ctx context.Context, ref string) (bool, error)
	OrganizeForCase(ctx context.Context, familyID int, refs []string) ([]string, error)
}

type S3Store struct {
	client *s3.Client
	bucket string
	logger *logrus.Logger
}

func NewS3Store(client *s3.Client, bucket string, logger *logrus.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, logger: logger}
}

// key strips the s3://bucket/ prefix a stored ref may carry.
func (s *S3Store) key(ref string) string {
	prefix := fmt.Sprintf("s3://%s/", s.bucket)
	return strings.TrimPrefix(strings.TrimSpace(ref), prefix)
}

func (s *S3Store) ref(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

func (s *S3Store) Exists(ctx context.Context, ref string) (bool, error) {
	key := s.key(ref)
	if key == "" {
		return false, nil
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, fmt.Errorf("head document %s: %w", key, err)
	}

	return true, nil
}

// OrganizeForCase moves every referenced object under cases/{id}/ and
// returns the relocated references in the same order. A move is a copy
// then delete; a failed delete leaves a stray source object behind, which
// is logged and tolerated.
func (s *S3Store) OrganizeForCase(ctx context.Context, familyID int, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))

	for _, ref := range refs {
		key := s.key(ref)
		if key == "" {
			continue
		}

		newKey := fmt.Sprintf("cases/%d/%s", familyID, path.Base(key))
		if newKey == key {
			out = append(out, s.ref(key))
			continue
		}

		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			CopySource: aws.String(s.bucket + "/" + key),
			Key:        aws.String(newKey),
		})
		if err != nil {
			return nil, fmt.Errorf("copy document %s: %w", key, err)
		}

		_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("failed to delete moved document source")
		}

		out = append(out, s.ref(newKey))
	}

	return out, nil
}

// SplitRefs parses the comma-joined reference list stored on a record.
func SplitRefs(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinRefs is the inverse of SplitRefs.
func JoinRefs(refs []string) string {
	return strings.Join(refs, ",")
}

// MemoryStore is a test double for Store keyed by reference.
type MemoryStore struct {
	Objects map[string]bool
	// Moves records OrganizeForCase calls, old ref -> new ref.
	Moves map[string]string
}

func NewMemoryDocStore(refs ...string) *MemoryStore {
	m := &MemoryStore{Objects: map[string]bool{}, Moves: map[string]string{}}
	for _, r := range refs {
		m.Objects[r] = true
	}
	return m
}

func (m *MemoryStore) Exists(ctx context.Context, ref string) (bool, error) {
	return m.Objects[ref], nil
}

func (m *MemoryStore) OrganizeForCase(ctx context.Context, familyID int, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !m.Objects[ref] {
			return nil, types.ErrDocumentNotFound
		}
		newRef := fmt.Sprintf("cases/%d/%s", familyID, path.Base(ref))
		delete(m.Objects, ref)
		m.Objects[newRef] = true
		m.Moves[ref] = newRef
		out = append(out, newRef)
	}
	return out, nil
}
