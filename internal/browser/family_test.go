package browser

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Family
		wantErr bool
	}{
		{"chrome", Chrome, false},
		{"Firefox", Firefox, false},
		{"  edge ", Edge, false},
		{"brave", Brave, false},
		{"opera", Opera, false},
		{"safari", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpecTable(t *testing.T) {
	for _, f := range Families() {
		t.Run(f.String(), func(t *testing.T) {
			spec, ok := Lookup(f)
			if !ok {
				t.Fatalf("no spec for %s", f)
			}
			if spec.Family != f {
				t.Errorf("spec.Family = %s, want %s", spec.Family, f)
			}
			for _, placeholder := range []string{"{version}", "{bits}", "{format}"} {
				if !strings.Contains(spec.Template, placeholder) {
					t.Errorf("template %q lacks %s", spec.Template, placeholder)
				}
			}
			if spec.FeedURL == "" || spec.Artifact == "" {
				t.Errorf("incomplete spec: %+v", spec)
			}
		})
	}

	chrome, _ := Lookup(Chrome)
	brave, _ := Lookup(Brave)
	if chrome.FeedURL != brave.FeedURL || chrome.Template != brave.Template {
		t.Error("chrome and brave must share feed and template")
	}

	firefox, _ := Lookup(Firefox)
	opera, _ := Lookup(Opera)
	if firefox.Feed != FeedMetadata || opera.Feed != FeedMetadata {
		t.Error("firefox and opera must use the metadata feed")
	}
}

func TestSpecSupports(t *testing.T) {
	tests := []struct {
		family Family
		osTag  string
		want   bool
	}{
		{Edge, "win", true},
		{Edge, "linux", false},
		{Edge, "mac", false},
		{Chrome, "linux", true},
		{Firefox, "mac", true},
		{Opera, "win", true},
	}

	for _, tt := range tests {
		t.Run(tt.family.String()+"_"+tt.osTag, func(t *testing.T) {
			spec, _ := Lookup(tt.family)
			if got := spec.Supports(tt.osTag); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.osTag, got, tt.want)
			}
		})
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	spec, _ := Lookup(Chrome)
	spec.LinuxCommands[0] = "mutated"

	again, _ := Lookup(Chrome)
	if again.LinuxCommands[0] == "mutated" {
		t.Error("Lookup must not expose the shared table")
	}
}

func TestDriverPath(t *testing.T) {
	tests := []struct {
		family Family
		osTag  string
		want   string
	}{
		{Chrome, "linux", filepath.Join("root", "chrome", "chromedriver")},
		{Edge, "win", filepath.Join("root", "edge", "edgedriver.exe")},
		{Firefox, "mac", filepath.Join("root", "firefox", "firefoxdriver")},
	}

	for _, tt := range tests {
		t.Run(string(tt.family)+"_"+tt.osTag, func(t *testing.T) {
			if got := tt.family.DriverPath("root", tt.osTag); got != tt.want {
				t.Errorf("DriverPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
