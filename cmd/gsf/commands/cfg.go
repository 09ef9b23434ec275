package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tdinh-labs/go-sign-flow/pkg/cfg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Print the control flow graph of a function",
	Long: `Builds the control flow graph for the named function and prints its
blocks, statements, and edges. Branch edges carry the condition and
the direction (true/false) they encode.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		funcs, err := parseFile(filePath)
		if err != nil {
			return err
		}
		fn, err := findFunction(funcs, functionName, filePath)
		if err != nil {
			return err
		}

		graph, err := cfg.Build(fn)
		if err != nil {
			return fmt.Errorf("building CFG for %s: %w", functionName, err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(graph, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}
		printGraph(graph)
		return nil
	},
}

// printGraph prints CFG information in human-readable format.
func printGraph(graph *cfg.Graph) {
	fmt.Printf("=== CFG for function: %s ===\n", graph.FunctionName)
	fmt.Printf("Entry Block: %s\n", graph.Entry)
	fmt.Printf("Exit Block: %s\n", graph.Exit)

	ids := sortedBlockIDs(graph)
	fmt.Printf("\nBlocks (%d):\n", len(ids))
	for _, id := range ids {
		block := graph.Blocks[id]
		fmt.Printf("  %s (%s, lines %d-%d)\n", id, block.Kind, block.StartLine, block.EndLine)
		for _, stmt := range block.Stmts {
			fmt.Printf("    %s\n", stmt.Text)
		}
	}

	fmt.Println("\nEdges:")
	for _, id := range ids {
		block := graph.Blocks[id]
		succs := append([]string(nil), block.Succs...)
		sort.Strings(succs)
		for _, succ := range succs {
			if branch, ok := block.SuccCond[succ]; ok {
				fmt.Printf("  %s --%s:%t--> %s\n", id, branch.Cond.Text, branch.Taken, succ)
			} else {
				fmt.Printf("  %s ----> %s\n", id, succ)
			}
		}
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
