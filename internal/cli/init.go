package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a fresh API test project",
		Long:  "Scaffold the directory layout and support files for a new API test project; use generate afterwards to fill it with tests.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", ".", "Project directory to scaffold")
	cmd.Flags().Bool("force", false, "Overwrite existing files")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "."
	}
	absDir, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	for _, dir := range []string{"tests", "config", "data", "reports"} {
		if err := os.MkdirAll(filepath.Join(absDir, dir), 0o755); err != nil {
			return newUsageError(fmt.Sprintf("init: cannot create %s directory: %v", dir, err))
		}
	}

	files := map[string]string{
		"requirements.txt": projectRequirements,
		"README.md":        projectReadme,
	}
	for name, content := range files {
		target := filepath.Join(absDir, name)
		if st, err := os.Stat(target); err == nil && st.Mode().IsRegular() && !cfg.Force {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", target))
		}
		// Atomic write via temp + rename.
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
			return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
		}
		if err := os.Rename(tmp, target); err != nil {
			_ = os.Remove(tmp)
			return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", target, err))
		}
	}

	fmt.Fprintf(os.Stdout, "Initialized test project at %s\n", absDir)
	fmt.Fprintln(os.Stdout, "Next: swagger2pytest generate --input <spec> --out tests")
	return nil
}

const projectRequirements = `# API test project requirements
requests>=2.31.0
pytest>=7.4.0
pytest-html>=4.1.0
pytest-xdist>=3.5.0
pyyaml>=6.0.1
python-dotenv>=1.0.0
`

const projectReadme = `# API Test Project

Scaffolded by swagger2pytest.

## Setup

` + "```bash" + `
pip install -r requirements.txt
` + "```" + `

## Usage

` + "```bash" + `
# Generate tests from an OpenAPI document
swagger2pytest generate --input openapi.json --base-url https://api.example.com --out tests

# Generate a combined file for one tag only
swagger2pytest generate --input openapi.json --tag users --out tests/users

# Run the suite
pytest -v
` + "```" + `

## Layout

- ` + "`tests/`" + ` - generated test files
- ` + "`config/`" + ` - test configuration
- ` + "`data/`" + ` - test data files
- ` + "`reports/`" + ` - test reports
`
