package backlight

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestDevice(t *testing.T, max, current int) (*Device, afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := "/sys/class/backlight/panel"

	files := map[string]int{
		"max_brightness":    max,
		"actual_brightness": current,
		"brightness":        current,
	}
	for name, v := range files {
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, path, []byte(strconv.Itoa(v)+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	d, err := Open(fs, dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return d, fs, dir
}

func readBrightness(t *testing.T, fs afero.Fs, dir string) int {
	t.Helper()
	data, err := afero.ReadFile(fs, filepath.Join(dir, "brightness"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestOpen(t *testing.T) {
	d, _, _ := newTestDevice(t, 255, 100)
	if d.Max() != 255 {
		t.Errorf("Max() = %d, want 255", d.Max())
	}

	current, err := d.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if current != 100 {
		t.Errorf("Current() = %d, want 100", current)
	}
}

func TestOpen_MissingMax(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Open(fs, "/sys/class/backlight/panel"); err == nil {
		t.Error("Open() without max_brightness should fail")
	}
}

func TestOpen_InvalidMax(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/sys/class/backlight/panel"
	if err := afero.WriteFile(fs, filepath.Join(dir, "max_brightness"), []byte("0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(fs, dir); err == nil {
		t.Error("Open() with zero max_brightness should fail")
	}
}

func TestSet_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{
			name:  "below minimum clamps to 1",
			value: -500,
			want:  1,
		},
		{
			name:  "zero clamps to 1",
			value: 0,
			want:  1,
		},
		{
			name:  "in range is written as is",
			value: 42,
			want:  42,
		},
		{
			name:  "maximum is allowed",
			value: 100,
			want:  100,
		},
		{
			name:  "above maximum clamps to max",
			value: 100000,
			want:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, fs, dir := newTestDevice(t, 100, 50)
			if err := d.Set(tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got := readBrightness(t, fs, dir); got != tt.want {
				t.Errorf("brightness = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepValue(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		percent int
		want    int
	}{
		{
			name:    "ten percent of 100",
			max:     100,
			percent: 10,
			want:    10,
		},
		{
			name:    "rounds up",
			max:     255,
			percent: 10,
			want:    26,
		},
		{
			name:    "negative step",
			max:     255,
			percent: -10,
			want:    -26,
		},
		{
			name:    "zero",
			max:     255,
			percent: 0,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Device{max: tt.max}
			if got := d.StepValue(tt.percent); got != tt.want {
				t.Errorf("StepValue(%d) = %d, want %d", tt.percent, got, tt.want)
			}
		})
	}
}
