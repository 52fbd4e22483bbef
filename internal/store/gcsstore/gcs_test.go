package gcsstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"cloud.google.com/go/storage"

	"github.com/discochess/contagion/internal/codec/gzipcodec"
	"github.com/discochess/contagion/internal/codec/noopcodec"
	"github.com/discochess/contagion/internal/codec/zstdcodec"
	"github.com/discochess/contagion/internal/store"
)

// mockBucket serves objects from a map.
type mockBucket struct {
	objects map[string][]byte
	listErr error
}

func (m *mockBucket) open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockBucket) keys(ctx context.Context, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
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
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			WithPrefix(tt.input)(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestStore_scenarioKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "scenarios/reference.yaml.gz"},
		{"data/v1/", "data/v1/scenarios/reference.yaml.gz"},
	}
	for _, tt := range tests {
		s := &Store{codec: gzipcodec.New(), prefix: tt.prefix}
		if got := s.scenarioKey("reference"); got != tt.want {
			t.Errorf("scenarioKey() = %q, want %q", got, tt.want)
		}
	}
}

func TestStore_ReadScenario(t *testing.T) {
	data := []byte("name: lockdown\n")
	compressed, err := compressData(data)
	if err != nil {
		t.Fatalf("compressData() error = %v", err)
	}

	s := &Store{
		bucket: &mockBucket{objects: map[string][]byte{"scenarios/lockdown.yaml.zst": compressed}},
		codec:  zstdcodec.New(),
	}

	got, err := s.ReadScenario(context.Background(), "lockdown")
	if err != nil {
		t.Fatalf("ReadScenario() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadScenario() = %q, want %q", got, data)
	}
}

func TestStore_ReadScenario_NotFound(t *testing.T) {
	s := &Store{bucket: &mockBucket{}, codec: noopcodec.New()}

	_, err := s.ReadScenario(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadScenario() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ReadScenario_Cancelled(t *testing.T) {
	s := &Store{bucket: &mockBucket{}, codec: noopcodec.New()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadScenario(ctx, "any"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadScenario() error = %v, want context.Canceled", err)
	}
}

func TestStore_List(t *testing.T) {
	s := &Store{
		bucket: &mockBucket{objects: map[string][]byte{
			"p/scenarios/z.yaml":     nil,
			"p/scenarios/a.yaml":     nil,
			"p/scenarios/a.yaml.zst": nil,
			"p/scenarios/sub/b.yaml": nil,
			"other/scenarios/c.yaml": nil,
		}},
		prefix: "p/",
		codec:  noopcodec.New(),
	}

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"a", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestStore_List_Error(t *testing.T) {
	boom := errors.New("boom")
	s := &Store{bucket: &mockBucket{listErr: boom}, codec: noopcodec.New()}

	if _, err := s.List(context.Background()); !errors.Is(err, boom) {
		t.Errorf("List() error = %v, want %v", err, boom)
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
