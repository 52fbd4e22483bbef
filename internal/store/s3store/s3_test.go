package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/contagion/internal/codec/noopcodec"
	"github.com/discochess/contagion/internal/codec/zstdcodec"
	"github.com/discochess/contagion/internal/store"
)

// fakeS3 serves objects from a map.
type fakeS3 struct {
	objects map[string][]byte
	gets    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.gets = append(f.gets, key)
	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var out s3.ListObjectsV2Output
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return &out, nil
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var set settings
			WithPrefix(tt.input)(&set)
			if set.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", set.prefix, tt.want)
			}
		})
	}
}

func TestStore_scenarioKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "scenarios/reference.yaml.zst"},
		{"data/v1/", "data/v1/scenarios/reference.yaml.zst"},
	}
	for _, tt := range tests {
		s := newStore(nil, "bucket", tt.prefix, zstdcodec.New())
		if got := s.scenarioKey("reference"); got != tt.want {
			t.Errorf("scenarioKey() = %q, want %q", got, tt.want)
		}
	}
}

func TestStore_ReadScenario(t *testing.T) {
	codec := zstdcodec.New()
	data := []byte("name: remote\n")
	compressed, err := compressData(data)
	if err != nil {
		t.Fatalf("compressData() error = %v", err)
	}

	fake := &fakeS3{objects: map[string][]byte{"v1/scenarios/remote.yaml.zst": compressed}}
	s := newStore(fake, "bucket", "v1/", codec)

	got, err := s.ReadScenario(context.Background(), "remote")
	if err != nil {
		t.Fatalf("ReadScenario() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadScenario() = %q, want %q", got, data)
	}
}

func TestStore_ReadScenario_NotFound(t *testing.T) {
	s := newStore(&fakeS3{}, "bucket", "", noopcodec.New())

	_, err := s.ReadScenario(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadScenario() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ReadScenario_InvalidNameSkipsRequest(t *testing.T) {
	fake := &fakeS3{}
	s := newStore(fake, "bucket", "", noopcodec.New())

	if _, err := s.ReadScenario(context.Background(), "../x"); !errors.Is(err, store.ErrInvalidName) {
		t.Errorf("ReadScenario() error = %v, want ErrInvalidName", err)
	}
	if len(fake.gets) != 0 {
		t.Errorf("GetObject called %d times, want 0", len(fake.gets))
	}
}

func TestStore_List(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{
		"v1/scenarios/b.yaml":        nil,
		"v1/scenarios/a.yaml":        nil,
		"v1/scenarios/nested/c.yaml": nil,
		"v1/scenarios/readme.md":     nil,
		"v2/scenarios/d.yaml":        nil,
	}}
	s := newStore(fake, "bucket", "v1/", noopcodec.New())

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestStore_Close(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// compressData compresses data using zstd for testing.
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstdcodec.New().Writer(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
