package snapper

import (
	"errors"
	"testing"

	"snapsweep/internal/logging"
)

func TestLatestNumber(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    int
		wantOK  bool
	}{
		{
			name:   "single marked line",
			stdout: "0 current\n5 timeline\n7 latest incremental backup\n",
			want:   7,
			wantOK: true,
		},
		{
			name:   "last matching line wins",
			stdout: "3 latest incremental backup\n9 timeline\n12 latest incremental backup\n13 pre-upgrade\n",
			want:   12,
			wantOK: true,
		},
		{
			name:   "leading whitespace",
			stdout: "   7    latest incremental backup",
			want:   7,
			wantOK: true,
		},
		{
			name:   "no marker",
			stdout: "1 timeline\n2 timeline\n",
			wantOK: false,
		},
		{
			name:   "empty output",
			stdout: "",
			wantOK: false,
		},
		{
			// The newest marked line decides. When its number does not
			// parse, earlier marked lines are not consulted.
			name:   "unparseable last match hides earlier match",
			stdout: "10 latest incremental backup\nabc latest incremental backup\n",
			wantOK: false,
		},
		{
			name:   "unparseable single match",
			stdout: "x7 latest incremental backup\n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := latestNumber(tt.stdout)
			if ok != tt.wantOK {
				t.Fatalf("latestNumber() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("latestNumber() = %d, want %d", got, tt.want)
			}
		})
	}
}

// fakeLister returns canned snapper output
type fakeLister struct {
	stdout string
	stderr string
	err    error

	configs []string
}

func (f *fakeLister) List(configName string) (string, string, error) {
	f.configs = append(f.configs, configName)
	return f.stdout, f.stderr, f.err
}

func TestResolverLatest(t *testing.T) {
	lister := &fakeLister{stdout: "2 timeline\n8 latest incremental backup\n"}
	r := NewResolver(lister, logging.Nop())

	num, ok, err := r.Latest("home")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if !ok || num != 8 {
		t.Errorf("Latest() = (%d, %v), want (8, true)", num, ok)
	}
	if len(lister.configs) != 1 || lister.configs[0] != "home" {
		t.Errorf("lister called with %v, want [home]", lister.configs)
	}
}

func TestResolverLatestAbsent(t *testing.T) {
	r := NewResolver(&fakeLister{stdout: "2 timeline\n"}, logging.Nop())

	_, ok, err := r.Latest("home")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if ok {
		t.Error("Latest() found a marker in unmarked output")
	}
}

func TestResolverSnapperFailureIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
	}{
		{"permissions error", "No permissions to read config."},
		{"generic failure", "Unknown config."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{stderr: tt.stderr, err: errors.New("exit status 1")}
			r := NewResolver(lister, logging.Nop())

			if _, _, err := r.Latest("home"); err == nil {
				t.Fatal("Latest() did not propagate snapper failure")
			}
		})
	}
}
