package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tdinh-labs/go-sign-flow/internal/log"
	"github.com/tdinh-labs/go-sign-flow/pkg/analysis"
	"github.com/tdinh-labs/go-sign-flow/pkg/cache"
	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
	"github.com/tdinh-labs/go-sign-flow/pkg/syntax"
)

var (
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	okStyle      = color.New(color.FgGreen, color.Bold)
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file> [function]",
	Short: "Report divisions whose divisor may be zero",
	Long: `Analyzes every function in the file (or just the named one) and
reports each division or modulo whose divisor the sign analysis could
not prove nonzero. Exits nonzero when findings exist.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		conf, err := loadConfig()
		if err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		logger := log.New(verbose || conf.Verbose)
		defer logger.Sync()

		funcs, err := parseFile(filePath)
		if err != nil {
			return err
		}

		targets := funcs
		if len(args) == 2 {
			fn, err := findFunction(funcs, args[1], filePath)
			if err != nil {
				return err
			}
			targets = []*syntax.Function{fn}
		}

		prog := analysis.NewProgram(funcs)
		if conf.CacheEnabled {
			summaries := cache.New(conf.CacheSize)
			if err := summaries.LoadFile(conf.CachePath); err != nil {
				logger.Warn("ignoring unreadable summary cache")
			}
			prog.SetSummaryCache(summaries)
			defer summaries.SaveFile(conf.CachePath)
		}

		var findings []analysis.Finding
		for _, fn := range targets {
			graph, err := cfg.Build(fn)
			if err != nil {
				return fmt.Errorf("building CFG for %s: %w", fn.Name, err)
			}
			analyzer := analysis.New(graph,
				analysis.WithLimits(conf.Limits()),
				analysis.WithResolver(prog),
				analysis.WithLogger(logger),
			)
			guarded, err := analyzer.RunGuarded(analysis.NewAbstractState(), analysis.NewContext(fn.Name))
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", fn.Name, err)
			}
			if guarded.Degraded() {
				logger.Warn("analysis degraded, findings are conservative")
			}
			findings = append(findings, analysis.CheckZeroSafety(graph, guarded.Result)...)
		}

		if jsonOutput || conf.JSONOutput {
			data, err := json.MarshalIndent(findings, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			printFindings(filePath, findings)
		}

		if len(findings) > 0 {
			return fmt.Errorf("%d potential zero divisor(s)", len(findings))
		}
		return nil
	},
}

func printFindings(filePath string, findings []analysis.Finding) {
	if len(findings) == 0 {
		okStyle.Println("no potential zero divisors found")
		return
	}
	for _, f := range findings {
		warningStyle.Print("warning: ")
		fmt.Print(f.Message)
		fmt.Print("  ")
		fileStyle.Printf("%s", filePath)
		fmt.Print(":")
		lineStyle.Printf("%d", f.Line)
		fmt.Printf("  (%s, %s)\n", f.Function, f.Block)
	}
}

func init() {
	checkCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	checkCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}
