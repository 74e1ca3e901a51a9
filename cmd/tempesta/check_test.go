package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

const validDocument = `listen 8080;

srv_group default {
    server 10.0.0.1;
    server 10.0.0.2:8081;
}
`

func TestCheckDocumentValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempesta.conf")
	writeTestFile(t, path, validDocument)

	if err := checkDocument(nil, []string{path}); err != nil {
		t.Errorf("checkDocument() with valid file returned error: %v", err)
	}
}

func TestCheckDocumentSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempesta.conf")
	writeTestFile(t, path, "listen \"8080;\n")

	err := checkDocument(nil, []string{path})
	if err == nil {
		t.Fatal("checkDocument() with unterminated quote should return error")
	}
	if !strings.Contains(err.Error(), "near:") {
		t.Errorf("error %q does not carry the offending excerpt", err)
	}
}

func TestCheckDocumentNonexistentFile(t *testing.T) {
	err := checkDocument(nil, []string{filepath.Join(t.TempDir(), "nope.conf")})
	if err == nil {
		t.Error("checkDocument() with nonexistent file should return error")
	}
}

func TestCheckDocumentFromBootstrapSource(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "tempesta.conf")
	writeTestFile(t, docPath, validDocument)

	bootPath := filepath.Join(dir, "tempesta.yaml")
	writeTestFile(t, bootPath, "source:\n  type: file\n  path: "+docPath+"\n")

	origCfgFile := cfgFile
	cfgFile = bootPath
	defer func() { cfgFile = origCfgFile }()

	if err := checkDocument(nil, []string{}); err != nil {
		t.Errorf("checkDocument() via bootstrap source returned error: %v", err)
	}
}

func TestCheckDocumentMissingBootstrap(t *testing.T) {
	origCfgFile := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { cfgFile = origCfgFile }()

	if err := checkDocument(nil, []string{}); err == nil {
		t.Error("checkDocument() with missing explicit bootstrap should return error")
	}
}
