package cookies

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = "# Netscape HTTP Cookie File\n" +
	".v.example\tTRUE\t/\tTRUE\t4102444800\tsession\tabc\n" +
	"#HttpOnly_.v.example\tTRUE\t/\tTRUE\t0\ttoken\txyz\n" +
	"broken line\n" +
	"\n" +
	"api.example\tFALSE\t/\tFALSE\t4102444800\tuid\t42\n"

func TestParseNetscape(t *testing.T) {
	got, err := ParseNetscape(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseNetscape() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("cookies = %d, want 3", len(got))
	}
	if got[0].Name != "session" || !got[0].Secure || got[0].HttpOnly {
		t.Fatalf("cookie[0] = %+v", got[0])
	}
	if got[1].Name != "token" || !got[1].HttpOnly || !got[1].Expires.IsZero() {
		t.Fatalf("cookie[1] = %+v, want http-only session cookie", got[1])
	}
	if got[2].Domain != "api.example" || got[2].Value != "42" {
		t.Fatalf("cookie[2] = %+v", got[2])
	}
}

func TestLoadJar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	jar, err := LoadJar(path)
	if err != nil {
		t.Fatalf("LoadJar() error = %v", err)
	}
	cs := jar.Cookies(&url.URL{Scheme: "https", Host: "www.v.example", Path: "/"})
	names := map[string]bool{}
	for _, c := range cs {
		names[c.Name] = true
	}
	if !names["session"] || !names["token"] {
		t.Fatalf("cookies for www.v.example = %v", cs)
	}
	if cs := jar.Cookies(&url.URL{Scheme: "http", Host: "api.example", Path: "/"}); len(cs) != 1 {
		t.Fatalf("cookies for api.example = %v, want 1", cs)
	}
}

func TestLoadJarMissingFile(t *testing.T) {
	if _, err := LoadJar(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
