// Command docpdfcli is the operator entry point for pkg/docpdf: it reads a
// pre-parsed document structure (the same JSON shape internal/httpapi's
// compile endpoint accepts) and writes the compiled PDF to disk or stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillforge/docpdf/internal/config"
	"github.com/quillforge/docpdf/internal/httpapi"
	"github.com/quillforge/docpdf/internal/logging"
	"github.com/quillforge/docpdf/pkg/docpdf"
)

var (
	version string
	commit  string
	date    string
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "docpdfcli",
		Short:        "Compile a pre-parsed WordprocessingML layout to PDF",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("docpdfcli %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newCompileCmd(&verbose))
	return root
}

func newCompileCmd(verbose *bool) *cobra.Command {
	var (
		inPath     string
		outPath    string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a document JSON file to PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if *verbose {
				level = logging.LevelDebug
			}
			log := logging.New(level)

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("docpdfcli: load config: %w", err)
				}
				cfg = loaded
			}

			return runCompile(log, cfg, inPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&inPath, "in", "i", "", "path to the document JSON file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output PDF path (defaults to stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional docpdf.toml config path")
	cmd.MarkFlagRequired("in")

	return cmd
}

func runCompile(log *logging.Logger, cfg config.Config, inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("docpdfcli: read %s: %w", inPath, err)
	}

	var req httpapi.CompileRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("docpdfcli: parse %s: %w", inPath, err)
	}
	if req.WatermarkOpacity == 0 {
		req.WatermarkOpacity = cfg.Compiler.WatermarkOpacity
	}
	if !req.ArlingtonCompatible {
		req.ArlingtonCompatible = cfg.Compiler.ArlingtonCompatible
	}

	reader, parser, err := httpapi.Collaborators(req)
	if err != nil {
		return fmt.Errorf("docpdfcli: build collaborators: %w", err)
	}

	result, err := docpdf.Compile(reader, parser, docpdf.Options{
		ArlingtonCompatible: req.ArlingtonCompatible,
		WatermarkOpacity:    req.WatermarkOpacity,
		Logger:              log,
		Validate:            req.Validate,
	})
	if err != nil {
		return fmt.Errorf("docpdfcli: compile: %w", err)
	}

	if outPath == "" {
		_, err := os.Stdout.Write(result.PDF)
		return err
	}
	if err := os.WriteFile(outPath, result.PDF, 0o644); err != nil {
		return fmt.Errorf("docpdfcli: write %s: %w", outPath, err)
	}
	log.Info("wrote PDF", "path", outPath, "pages", result.Summary.TotalPages)
	return nil
}
