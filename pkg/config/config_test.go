package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name" json:"name" toml:"name"`
	Count int    `yaml:"count" json:"count" toml:"count"`
}

type validated struct {
	Name string `yaml:"name"`
}

func (v *validated) Validate() error {
	if v.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_ByExtension(t *testing.T) {
	cases := map[string]string{
		"c.yaml": "name: chart\ncount: 3\n",
		"c.json": "{\n\t\"name\": \"chart\",\n\t\"count\": 3\n}",
		"c.toml": "name = \"chart\"\ncount = 3\n",
	}
	for name, content := range cases {
		var s sample
		if err := Load(writeFile(t, name, content), &s); err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		if s.Name != "chart" || s.Count != 3 {
			t.Errorf("%s: got %+v", name, s)
		}
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("GANTT_TEST_NAME", "from-env")
	var s sample
	if err := Load(writeFile(t, "c.yaml", "name: ${GANTT_TEST_NAME}\n"), &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" {
		t.Errorf("name = %q, want %q", s.Name, "from-env")
	}
}

func TestLoadLiteral_KeepsDollar(t *testing.T) {
	t.Setenv("GANTT_TEST_NAME", "from-env")
	var s sample
	if err := LoadLiteral(writeFile(t, "c.json", `{"name": "Budget $GANTT_TEST_NAME"}`), &s); err != nil {
		t.Fatalf("LoadLiteral: %v", err)
	}
	if s.Name != "Budget $GANTT_TEST_NAME" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	var v validated
	err := Load(writeFile(t, "c.yaml", "name: \"\"\n"), &v)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_Missing(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults_Fallback(t *testing.T) {
	def := writeFile(t, "default.yaml", "name: fallback\n")
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "none.yaml"), def, &s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.Name != "fallback" {
		t.Errorf("name = %q", s.Name)
	}
}
