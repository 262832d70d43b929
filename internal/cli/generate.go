package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openclaw/swagger2pytest/internal/emitter/pytestemitter"
	genspec "github.com/openclaw/swagger2pytest/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input      string
	Out        string
	BaseURL    string
	Tag        string
	ConfigPath string
	ConfigOnly bool
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: "tests", BaseURL: "http://localhost:8000"}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a pytest suite from an OpenAPI/Swagger document",
		Long: "Generate a pytest suite from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2pytest generate --input openapi.yaml --base-url https://api.example.com
  swagger2pytest generate --input https://api.example.com/openapi.json --tag users --out tests/users
  swagger2pytest generate --config-only --out tests --base-url https://api.example.com
  swagger2pytest --config config.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (default \"tests\")")
	flags.String("base-url", "", "Base URL of the API under test")
	flags.String("tag", "", "Generate one combined file for endpoints carrying this tag")
	flags.Bool("config-only", false, "Write only the configuration files, skip spec loading and test generation")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("base-url") {
		value, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(value)
	}
	if flags.Changed("tag") {
		value, err := flags.GetString("tag")
		if err != nil {
			return err
		}
		cfg.Tag = strings.TrimSpace(value)
	}
	if flags.Changed("config-only") {
		value, err := flags.GetBool("config-only")
		if err != nil {
			return err
		}
		cfg.ConfigOnly = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Tag = strings.TrimSpace(c.Tag)
	if c.Out == "" {
		c.Out = "tests"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" && !c.ConfigOnly {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	// Config-only mode writes the scaffolding without touching a spec.
	if cfg.ConfigOnly {
		res, err := pytestemitter.Emit(ctx, nil, pytestemitter.Options{
			OutDir:     cfg.Out,
			BaseURL:    cfg.BaseURL,
			ConfigOnly: true,
			Force:      cfg.Force,
			DryRun:     cfg.DryRun,
			Verbose:    cfg.Verbose,
		})
		if err != nil {
			return wrapOutputError(err, absOut)
		}
		if cfg.DryRun {
			printPlan(absOut, res.Planned)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Generated configuration files in %s\n", absOut)
		return nil
	}

	// 1) Acquire and decode the document (file or http/https URL).
	raw, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Normalize into the canonical endpoint model.
	doc, err := genspec.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse spec: %w", err)
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Found %d endpoints in %s %s\n", len(doc.Endpoints), doc.Info.Title, doc.Info.Version)
	}

	// 3) Render and write the suite.
	res, err := pytestemitter.Emit(ctx, doc, pytestemitter.Options{
		OutDir:  cfg.Out,
		BaseURL: cfg.BaseURL,
		Tag:     cfg.Tag,
		Force:   cfg.Force,
		DryRun:  cfg.DryRun,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		printPlan(absOut, res.Planned)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Generated %d test files for %d endpoints in %s\n", res.TestFiles, res.Endpoints, absOut)
	fmt.Fprintf(os.Stdout, "Run them with: cd %s && pytest -v\n", cfg.Out)
	return nil
}

func printPlan(outDir string, planned []pytestemitter.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s\n", p.RelPath)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, err))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "baseurl":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.BaseURL = str
		case "tag":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Tag = str
		case "configonly":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ConfigOnly = val
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
