package pytestemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openclaw/swagger2pytest/internal/spec"
	"github.com/openclaw/swagger2pytest/internal/testgen"
)

// Options controls how the pytest emitter renders a test suite.
type Options struct {
	OutDir     string // required; target directory to write the suite
	BaseURL    string // base URL baked into generated tests and config
	Tag        string // when set, emit one combined file for this tag
	ConfigOnly bool   // emit only pytest.ini and the config module
	Force      bool   // overwrite existing output
	DryRun     bool   // don't write, only plan
	Verbose    bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
}

// Result returns the planned files and generation counts.
type Result struct {
	BaseURL   string
	Endpoints int
	TestFiles int
	Planned   []PlannedFile
}

// Emit renders the pytest suite for a canonical document plus the
// supporting project files (pytest.ini, config module, conftest,
// requirements). With ConfigOnly set only pytest.ini and the config
// module are emitted and the document may be nil.
func Emit(ctx context.Context, doc *spec.Document, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil && !opts.ConfigOnly {
		return nil, fmt.Errorf("pytestemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("pytestemitter: OutDir is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	files := map[string][]byte{}
	testFiles := 0
	endpoints := 0
	if !opts.ConfigOnly {
		endpoints = len(doc.Endpoints)
		gen := testgen.New(baseURL)
		var renderer testgen.Renderer = testgen.PytestRenderer{}

		if tag := strings.TrimSpace(opts.Tag); tag != "" {
			suite, ok := gen.FileByTag(doc, tag)
			if !ok {
				return nil, fmt.Errorf("pytestemitter: no endpoint carries tag %q", tag)
			}
			files[suite.FileName] = []byte(renderer.Render(suite))
			testFiles++
		} else {
			for _, suite := range gen.Files(doc) {
				files[suite.FileName] = []byte(renderer.Render(suite))
				testFiles++
			}
		}

		files["__init__.py"] = []byte("# Auto-generated test package\n")
		files["conftest.py"] = []byte(conftestPy)
		files["requirements.txt"] = []byte(requirementsTxt)
	}

	files["pytest.ini"] = []byte(pytestIni)
	files[filepath.Join("config", "__init__.py")] = []byte("")
	files[filepath.Join("config", "test_config.py")] = []byte(renderTestConfig(baseURL))

	// Plan in deterministic order.
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)
	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel])})
	}

	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("pytestemitter: resolve output directory: %w", err)
	}
	if err := validateOutputDirectory(abs, opts.Force); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := writeFiles(abs, files); err != nil {
			return nil, err
		}
	}

	return &Result{
		BaseURL:   baseURL,
		Endpoints: endpoints,
		TestFiles: testFiles,
		Planned:   planned,
	}, nil
}

// validateOutputDirectory refuses a non-empty output directory unless
// force is set; generated artifacts are never silently overwritten.
func validateOutputDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory %q: %w", absPath, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("output path %q is not a directory", absPath)
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("cannot read output directory %q: %w", absPath, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %q is not empty (use --force to overwrite)", absPath)
	}
	return nil
}

func writeFiles(absDir string, files map[string][]byte) error {
	for rel := range files {
		dir := filepath.Dir(filepath.Join(absDir, rel))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pytestemitter: create directory %s: %w", dir, err)
		}
	}
	for rel, content := range files {
		if err := writeFileAtomic(absDir, rel, content); err != nil {
			return fmt.Errorf("pytestemitter: write file %s: %w", rel, err)
		}
	}
	return nil
}

// writeFileAtomic writes via temp file + rename so a failed run never
// leaves a truncated test file behind.
func writeFileAtomic(baseDir, relPath string, content []byte) error {
	fullPath := filepath.Join(baseDir, relPath)
	dir := filepath.Dir(fullPath)

	tmp, err := os.CreateTemp(dir, ".tmp-pytestemitter-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	success = true
	return nil
}

func renderTestConfig(baseURL string) string {
	return fmt.Sprintf(testConfigPy, baseURL)
}

const testConfigPy = `# API test configuration
import os


class Config:
    """Shared settings for the generated API tests."""

    BASE_URL = %q

    # Per-request timeout in seconds
    REQUEST_TIMEOUT = 30

    # Retry settings
    MAX_RETRIES = 3
    RETRY_DELAY = 1

    LOG_LEVEL = os.getenv("LOG_LEVEL", "INFO")

    # Authentication, when the API under test needs it
    API_KEY = os.getenv("API_KEY", "")
    BEARER_TOKEN = os.getenv("BEARER_TOKEN", "")


config = Config()
`

const conftestPy = `import os
import sys

# Make the suite importable regardless of where pytest is invoked from.
sys.path.insert(0, os.path.dirname(__file__))
`

const pytestIni = `[pytest]
python_files = test_*.py
python_classes = Test*
python_functions = test_*
addopts =
    -v
    --tb=short
    --strict-markers
    --disable-warnings
markers =
    smoke: quick smoke tests
    integration: integration tests
    unit: unit tests
    slow: slow running tests
`

const requirementsTxt = `requests>=2.31.0
pytest>=7.4.0
`
