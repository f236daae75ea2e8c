package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillforge/docpdf/internal/config"
	"github.com/quillforge/docpdf/internal/httpapi"
	"github.com/quillforge/docpdf/internal/logging"
)

func writeSampleRequest(t *testing.T, path string) {
	t.Helper()
	req := httpapi.CompileRequest{
		Sections: []httpapi.SectionDTO{{
			PageWidth: 612, PageHeight: 792,
			MarginTop: 72, MarginBottom: 72, MarginLeft: 72, MarginRight: 72,
		}},
		Body: []httpapi.ElementDTO{
			{Kind: "paragraph", Attrs: map[string]any{"text": "Compiled from the CLI."}},
		},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestRunCompileWritesPDFFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "doc.json")
	outPath := filepath.Join(dir, "out.pdf")
	writeSampleRequest(t, inPath)

	err := runCompile(logging.Discard(), config.Default(), inPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF-"), "output file does not look like a PDF")
}

func TestRunCompileRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := runCompile(logging.Discard(), config.Default(), filepath.Join(dir, "does-not-exist.json"), filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
}

func TestRunCompileRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(inPath, []byte("not json"), 0o644))

	err := runCompile(logging.Discard(), config.Default(), inPath, filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
}
