package rlox

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// Script fixtures live in testdata/*.yaml. Each case runs a whole program in
// a fresh interpreter and checks either the print output or the error text.
type scriptCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

func loadScriptCases(t *testing.T, path string) []scriptCase {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var cases []scriptCase
	if err := yaml.Unmarshal(raw, &cases); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return cases
}

func TestScripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no script fixtures found under testdata")
	}

	for _, path := range paths {
		for _, tc := range loadScriptCases(t, path) {
			tc := tc
			t.Run(filepath.Base(path)+"/"+tc.Name, func(t *testing.T) {
				ip := NewInterpreter()
				var out bytes.Buffer
				ip.Stdout = &out

				_, err := ip.Run(tc.Source)
				if tc.Error != "" {
					if err == nil {
						t.Fatalf("want error containing %q, got none\noutput:\n%s", tc.Error, out.String())
					}
					if !strings.Contains(err.Error(), tc.Error) {
						t.Fatalf("want error containing %q, got: %v", tc.Error, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out.String() != tc.Output {
					t.Fatalf("output mismatch\nwant:\n%s\ngot:\n%s", tc.Output, out.String())
				}
			})
		}
	}
}
