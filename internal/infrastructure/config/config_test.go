package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PageSize != 25 || c.Trust.High != 70 || c.Trust.Low != 40 {
		t.Errorf("defaults = %+v", c)
	}
	if c.Cache.Backend != "memory" || c.HTTPTimeout() != 30*time.Second || c.RetryMaxAttempts != 3 {
		t.Errorf("defaults = %+v", c)
	}
	if c.TokenSource() != nil {
		t.Error("no token configured should yield a nil source")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "api_url: https://api.example.com\norganization: org-file\npage_size: 10\ntrust:\n  high: 80\n  low: 50\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RFPDESK_ORGANIZATION", "org-env")
	t.Setenv("RFPDESK_TRUST_LOW", "45")
	t.Setenv("RFPDESK_TOKEN", "tok-123")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIURL != "https://api.example.com" || c.PageSize != 10 || c.Trust.High != 80 {
		t.Errorf("file values = %+v", c)
	}
	if c.Organization != "org-env" || c.Trust.Low != 45 || c.Token != "tok-123" {
		t.Errorf("env overrides = %+v", c)
	}
	tok, err := c.TokenSource().Token()
	if err != nil || tok.AccessToken != "tok-123" {
		t.Errorf("token = %+v, %v", tok, err)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("trust:\n  high: 30\n  low: 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for inverted thresholds")
	}
}

func TestSet_PersistsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if _, err := Set(path, "organization", "org-9"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := Set(path, "page_size", "50"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Organization != "org-9" || c.PageSize != 50 {
		t.Errorf("persisted = %+v", c)
	}

	if _, err := Set(path, "page_size", "many"); err == nil {
		t.Error("expected error for non-integer")
	}
	if _, err := Set(path, "cache.backend", "memcached"); err == nil {
		t.Error("expected validation error")
	}
	if _, err := Set(path, "colour", "blue"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("err = %v", err)
	}
}

func TestSet_DoesNotPersistEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("RFPDESK_TOKEN", "from-env")
	if _, err := Set(path, "organization", "org-1"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "" || strings.Contains(string(data), "from-env") {
		t.Errorf("config file = %s", data)
	}
}

func TestMasked(t *testing.T) {
	c := Config{Token: "abcdefghijkl"}
	if got := c.Masked().Token; got != "abcd********" {
		t.Errorf("masked = %q", got)
	}
	if c.Token != "abcdefghijkl" {
		t.Error("Masked modified the receiver")
	}
}

func TestTokenSource_Expiry(t *testing.T) {
	c := Config{Token: "t", TokenExpiry: "2020-01-01T00:00:00Z"}
	tok, _ := c.TokenSource().Token()
	if tok.Valid() {
		t.Error("expired token should be invalid")
	}
}
