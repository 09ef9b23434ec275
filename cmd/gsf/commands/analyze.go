package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tdinh-labs/go-sign-flow/internal/log"
	"github.com/tdinh-labs/go-sign-flow/pkg/analysis"
	"github.com/tdinh-labs/go-sign-flow/pkg/cache"
	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file> <function>",
	Short: "Infer sign invariants for every block of a function",
	Long: `Runs the path-sensitive sign analysis over the named function and
prints, per basic block, the inferred sign of every tracked variable.
Calls to functions defined in the same file are followed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

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
		fn, err := findFunction(funcs, functionName, filePath)
		if err != nil {
			return err
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

		graph, err := cfg.Build(fn)
		if err != nil {
			return fmt.Errorf("building CFG for %s: %w", functionName, err)
		}

		analyzer := analysis.New(graph,
			analysis.WithLimits(conf.Limits()),
			analysis.WithResolver(prog),
			analysis.WithLogger(logger),
		)
		guarded, err := analyzer.RunGuarded(analysis.NewAbstractState(), analysis.NewContext(fn.Name))
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", functionName, err)
		}
		if guarded.Degraded() {
			fmt.Printf("warning: %v; results are conservative\n", guarded.Failure)
		}

		if jsonOutput || conf.JSONOutput {
			return printAnalysisJSON(graph, guarded.Result)
		}
		printAnalysis(graph, guarded.Result)
		return nil
	},
}

// blockReport is the JSON form of one block's merged result.
type blockReport struct {
	Block  string            `json:"block"`
	Kind   string            `json:"kind"`
	Line   int               `json:"line"`
	States int               `json:"states"`
	Signs  map[string]string `json:"signs"`
}

func buildReports(graph *cfg.Graph, result analysis.Result) []blockReport {
	ids := sortedBlockIDs(graph)
	reports := make([]blockReport, 0, len(ids))
	for _, id := range ids {
		block := graph.Blocks[id]
		merged := result.MergedAt(id)
		signs := make(map[string]string)
		for _, name := range merged.Vars() {
			signs[name] = merged.Get(name).String()
		}
		reports = append(reports, blockReport{
			Block:  id,
			Kind:   string(block.Kind),
			Line:   block.StartLine,
			States: len(result[id]),
			Signs:  signs,
		})
	}
	return reports
}

func printAnalysis(graph *cfg.Graph, result analysis.Result) {
	fmt.Printf("=== Sign analysis: %s ===\n", graph.FunctionName)
	for _, report := range buildReports(graph, result) {
		fmt.Printf("\n%s (%s, line %d, %d state(s))\n", report.Block, report.Kind, report.Line, report.States)
		names := make([]string, 0, len(report.Signs))
		for name := range report.Signs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, report.Signs[name])
		}
	}
}

func printAnalysisJSON(graph *cfg.Graph, result analysis.Result) error {
	data, err := json.MarshalIndent(buildReports(graph, result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// sortedBlockIDs orders blocks by source line, then ID, for stable output.
func sortedBlockIDs(graph *cfg.Graph) []string {
	ids := make([]string, 0, len(graph.Blocks))
	for id := range graph.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		bi, bj := graph.Blocks[ids[i]], graph.Blocks[ids[j]]
		if bi.StartLine != bj.StartLine {
			return bi.StartLine < bj.StartLine
		}
		return ids[i] < ids[j]
	})
	return ids
}

func init() {
	analyzeCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	analyzeCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}
