package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractBeatmapRef(t *testing.T) {
	tests := []struct {
		url     string
		want    BeatmapRef
		wantErr bool
	}{
		{"https://osu.ppy.sh/b/129891", BeatmapRef{BeatmapID: 129891}, false},
		{"https://osu.ppy.sh/beatmaps/129891?mode=osu", BeatmapRef{BeatmapID: 129891}, false},
		{"https://osu.ppy.sh/s/39804", BeatmapRef{BeatmapSetID: 39804}, false},
		{"https://osu.ppy.sh/beatmapsets/39804#osu/129891", BeatmapRef{BeatmapID: 129891, BeatmapSetID: 39804}, false},
		{"https://osu.ppy.sh/users/2", BeatmapRef{}, true},
		{"https://osu.ppy.sh/b/abc", BeatmapRef{}, true},
		{"https://example.com/b/1", BeatmapRef{}, true},
		{"https://osu.ppy.sh/", BeatmapRef{}, true},
	}

	for _, tt := range tests {
		got, err := ExtractBeatmapRef(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractBeatmapRef(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractBeatmapRef(%q) = %+v, expected %+v", tt.url, got, tt.want)
		}
	}
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	if a == b {
		t.Error("Expected distinct UUIDs")
	}
	if !IsUUID(a) {
		t.Errorf("Generated value %q is not a UUID", a)
	}
	if IsUUID("not-a-uuid") {
		t.Error("IsUUID accepted garbage")
	}
}

func TestFindOsuFiles(t *testing.T) {
	root := t.TempDir()
	files := []string{
		filepath.Join(root, "b.osu"),
		filepath.Join(root, "set", "a.OSU"),
		filepath.Join(root, "set", "audio.mp3"),
	}
	for _, f := range files {
		if err := MakeDir(filepath.Dir(f)); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindOsuFiles(root)
	if err != nil {
		t.Fatalf("FindOsuFiles failed: %v", err)
	}
	want := []string{files[0], files[1]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := FindOsuFiles(filepath.Join(root, "missing")); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestMD5(t *testing.T) {
	// md5("abc")
	const want = "900150983cd24fb0d6963f7d28e17f72"
	if got := MD5Hex([]byte("abc")); got != want {
		t.Errorf("MD5Hex = %s, expected %s", got, want)
	}

	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FileMD5(path)
	if err != nil {
		t.Fatalf("FileMD5 failed: %v", err)
	}
	if got != want {
		t.Errorf("FileMD5 = %s, expected %s", got, want)
	}
}
