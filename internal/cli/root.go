package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/richtext-converter/internal/batch"
	"github.com/rohmanhakim/richtext-converter/internal/build"
	"github.com/rohmanhakim/richtext-converter/internal/config"
	"github.com/rohmanhakim/richtext-converter/internal/convert"
	"github.com/rohmanhakim/richtext-converter/internal/preview"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/storage"
	"github.com/rohmanhakim/richtext-converter/pkg/fileutil"
	"github.com/rohmanhakim/richtext-converter/pkg/hashutil"
)

var (
	cfgFile      string
	inputs       []string
	outputDir    string
	strictMode   bool
	maxDepth     int
	concurrency  int
	emitPreview  bool
	prettyOutput bool
	dryRun       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "richtext-convert",
	Short: "Convert legacy HTML markup into a canonical rich-text document model.",
	Long: `richtext-convert is a CLI application that parses legacy HTML documents
and converts them into a canonical rich-text model: an ordered sequence of
blocks whose inline content is expressed as text runs with composable marks.

Conversion is deterministic and lossless by policy: every attribute of the
input either lands in the model, is recorded in an audit report, or is
quarantined. The same input and configuration always produce byte-identical
canonical JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(inputs) == 0 {
			fmt.Fprintf(os.Stderr, "Error: --input is required. Provide at least one HTML file or directory.\n")
			cmd.Usage()
			os.Exit(1)
		}

		cfg, err := InitConfigWithError()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		paths, err := CollectInputs(inputs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if len(paths) == 0 {
			fmt.Fprintf(os.Stderr, "Error: no .html or .htm files found under the given inputs\n")
			os.Exit(1)
		}

		conv, err := convert.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("Configuration %q loaded, converting %d document(s)\n", cfg.Version(), len(paths))

		failures, err := runConversion(cmd.Context(), conv, cfg, paths)
		if err != nil {
			return err
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d document(s) failed to convert", failures, len(paths))
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = build.Stamp()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/rules.json)")
	rootCmd.PersistentFlags().StringArrayVar(&inputs, "input", []string{}, "HTML file or directory to convert (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "output", "root output directory for converted documents")
	rootCmd.PersistentFlags().BoolVar(&strictMode, "strict", false, "treat any quarantined content as a conversion failure")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum element nesting depth (0 uses the configured default)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 3, "number of concurrent conversion workers")
	rootCmd.PersistentFlags().BoolVar(&emitPreview, "preview", false, "also emit a Markdown preview next to each document")
	rootCmd.PersistentFlags().BoolVar(&prettyOutput, "pretty", false, "indent the emitted JSON for human inspection")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "convert without writing output")
}

// InitConfigWithError builds the rule bundle from the config file when one is
// given, otherwise from the default tables with flag overrides applied.
func InitConfigWithError() (config.Bundle, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return applyFlagOverrides(&cfg).Build()
	}

	fmt.Println("No config file specified. Using the default rule tables")
	return applyFlagOverrides(config.WithDefault()).Build()
}

func applyFlagOverrides(builder *config.Bundle) *config.Bundle {
	if strictMode {
		builder = builder.WithStrictQuarantine(true)
	}
	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	return builder
}

// ResetFlags restores all flag-backed variables to their defaults.
// Intended for tests, which share the package-level flag state.
func ResetFlags() {
	cfgFile = ""
	inputs = nil
	outputDir = "output"
	strictMode = false
	maxDepth = 0
	concurrency = 3
	emitPreview = false
	prettyOutput = false
	dryRun = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetStrictForTest(strict bool) {
	strictMode = strict
}

func SetMaxDepthForTest(depth int) {
	maxDepth = depth
}

// CollectInputs expands the given files and directories into a sorted,
// de-duplicated list of HTML file paths. Directories are walked recursively.
func CollectInputs(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("error reading input %s: %w", arg, err)
		}
		if !info.IsDir() {
			if isHTMLPath(arg) {
				add(arg)
			}
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isHTMLPath(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking input %s: %w", arg, err)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func isHTMLPath(p string) bool {
	switch strings.ToLower(fileutil.GetFileExtension(p)) {
	case "html", "htm":
		return true
	}
	return false
}

// documentReport is the emitted per-document audit report.
type documentReport struct {
	Source         string        `json:"source"`
	Status         string        `json:"status"`
	Error          string        `json:"error,omitempty"`
	Quarantined    []jsonEntry   `json:"quarantined"`
	UnmappedTags   []jsonTag     `json:"unmappedTags"`
	Normalizations []jsonNormLog `json:"normalizations"`
}

// The report aliases keep the on-disk report format decoupled from the
// in-memory audit types.
type (
	jsonEntry = quarantine.Entry
	jsonTag   = struct {
		Tag         string            `json:"tag"`
		Count       int               `json:"count"`
		SampleAttrs map[string]string `json:"sampleAttrs,omitempty"`
	}
	jsonNormLog = struct {
		Kind   string `json:"kind"`
		Path   []int  `json:"positionPath,omitempty"`
		Detail string `json:"detail,omitempty"`
	}
)

func runConversion(ctx context.Context, conv convert.Converter, cfg config.Bundle, paths []string) (failures int, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	jobs := make([]batch.Job, 0, len(paths))
	roots := make(map[string]*html.Node, len(paths))
	for _, p := range paths {
		root, perr := parseHTMLFile(p)
		if perr != nil {
			failures++
			fmt.Fprintf(os.Stderr, "parse %s: %s\n", p, perr)
			continue
		}
		roots[p] = root
		jobs = append(jobs, batch.Job{ID: p, Root: root})
	}

	outcomes := batch.Run(ctx, conv, jobs, concurrency)
	denylist := quarantine.NewDenylist(cfg.ScriptDenylist())
	sink := storage.NewLocalSink()

	for _, outcome := range outcomes {
		if !outcome.Converted {
			failures++
			fmt.Fprintf(os.Stderr, "convert %s: abandoned before completion\n", outcome.ID)
			continue
		}
		if werr := writeOutcome(&sink, outcome, roots[outcome.ID], denylist); werr != nil {
			return failures, werr
		}
		if outcome.Result.Status != convert.StatusSuccess {
			failures++
			fmt.Fprintf(os.Stderr, "convert %s: %s\n", outcome.ID, outcome.Result.Failure)
		} else {
			fmt.Printf("converted %s (%d block(s), %d quarantined, %d unmapped tag(s))\n",
				outcome.ID,
				len(outcome.Result.Document.Blocks),
				len(outcome.Result.Quarantined),
				len(outcome.Result.UnmappedTags))
		}
	}
	return failures, nil
}

func parseHTMLFile(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return html.Parse(f)
}

func writeOutcome(sink storage.Sink, outcome batch.Outcome, root *html.Node, denylist quarantine.Denylist) error {
	if dryRun {
		return nil
	}

	res := outcome.Result

	rep := documentReport{
		Source:         outcome.ID,
		Status:         string(res.Status),
		Quarantined:    res.Quarantined,
		UnmappedTags:   make([]jsonTag, 0, len(res.UnmappedTags)),
		Normalizations: make([]jsonNormLog, 0, len(res.Normalizations)),
	}
	if res.Failure != nil {
		rep.Error = res.Failure.Error()
	}
	if rep.Quarantined == nil {
		rep.Quarantined = []jsonEntry{}
	}
	for _, t := range res.UnmappedTags {
		rep.UnmappedTags = append(rep.UnmappedTags, jsonTag(t))
	}
	for _, n := range res.Normalizations {
		rep.Normalizations = append(rep.Normalizations, jsonNormLog{
			Kind:   string(n.Kind),
			Path:   n.Path,
			Detail: n.Detail,
		})
	}

	artifact := storage.Artifact{Stem: fileutil.StemName(outcome.ID)}

	repData, err := marshalOutput(rep)
	if err != nil {
		return fmt.Errorf("encoding report for %s: %w", outcome.ID, err)
	}
	artifact.Report = repData

	if res.Status == convert.StatusSuccess {
		docData, err := marshalOutput(res.Document)
		if err != nil {
			return fmt.Errorf("encoding document for %s: %w", outcome.ID, err)
		}
		artifact.Document = docData

		if emitPreview {
			md, _, perr := preview.Markdown(root, denylist)
			if perr != nil {
				fmt.Fprintf(os.Stderr, "preview %s: %s\n", outcome.ID, perr)
			} else {
				artifact.Preview = md
			}
		}
	}

	if _, werr := sink.Write(outputDir, artifact, hashutil.HashAlgoBLAKE3); werr != nil {
		return fmt.Errorf("writing artifacts for %s: %w", outcome.ID, werr)
	}
	return nil
}

func marshalOutput(v any) ([]byte, error) {
	if prettyOutput {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
