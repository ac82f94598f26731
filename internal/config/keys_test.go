package config

import (
	"testing"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

func TestParseProviderKey(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderKey
		wantErr bool
	}{
		{in: "query:memory", want: ProviderKey{Kind: models.KindQuery, Name: "memory"}},
		{in: " index : fts ", want: ProviderKey{Kind: models.KindIndexer, Name: "fts"}},
		{in: "Storage:filestore", want: ProviderKey{Kind: models.KindStorage, Name: "filestore"}},
		{in: "memory", wantErr: true},
		{in: "query:", wantErr: true},
		{in: "cache:x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProviderKey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDisabled_SkipsBlank(t *testing.T) {
	keys, err := ParseDisabled([]string{"query:a", "", "indexer:b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[1].String() != "indexer:b" {
		t.Errorf("keys = %v", keys)
	}
}
