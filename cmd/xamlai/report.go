package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/processor"
)

func extractFile(path string) ([]xamlai.TextNode, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	_, nodes, err := processor.NewXAMLProcessor().Extract(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nodes, nil
}

func truncate(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return text
}

type dryRunNode struct {
	ID    string `json:"id"`
	Key   string `json:"key,omitempty"`
	Text  string `json:"text"`
	Empty bool   `json:"empty"`
}

type dryRunOutput struct {
	InputFile  string       `json:"input_file"`
	Namespace  string       `json:"namespace,omitempty"`
	NodeCount  int          `json:"node_count"`
	EmptyCount int          `json:"empty_count"`
	Nodes      []dryRunNode `json:"nodes"`
}

func (a *app) newDryRunCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "dry-run <input.xaml>",
		Short: "Show which String entries would be translated, without calling the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := extractFile(args[0])
			if err != nil {
				return err
			}

			out := dryRunOutput{
				InputFile: filepath.Base(args[0]),
				NodeCount: len(nodes),
				Nodes:     make([]dryRunNode, len(nodes)),
			}
			for i, n := range nodes {
				out.Nodes[i] = dryRunNode{ID: n.ID, Key: n.Key, Text: n.Text, Empty: n.IsEmpty()}
				if n.IsEmpty() {
					out.EmptyCount++
				}
				if out.Namespace == "" {
					out.Namespace = n.Metadata["namespace"]
				}
			}

			if jsonOut {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			if len(nodes) == 0 {
				fmt.Fprintf(a.stdout, "No translatable content found in %s.\n", out.InputFile)
				return nil
			}

			fmt.Fprintf(a.stdout, "Dry run: %s\n", out.InputFile)
			fmt.Fprintf(a.stdout, "Namespace: %s\n", out.Namespace)
			fmt.Fprintf(a.stdout, "Found %d String entries (%d empty):\n\n", out.NodeCount, out.EmptyCount)
			for i, n := range out.Nodes {
				key := n.Key
				if key == "" {
					key = n.ID
				}
				if n.Empty {
					fmt.Fprintf(a.stdout, "%3d. %-24s (empty, skipped)\n", i+1, key)
					continue
				}
				fmt.Fprintf(a.stdout, "%3d. %-24s %q\n", i+1, key, truncate(n.Text, 60))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

type diffOutput struct {
	OldFile string `json:"old_file"`
	NewFile string `json:"new_file"`
	Stats   struct {
		Added     int `json:"added"`
		Removed   int `json:"removed"`
		Modified  int `json:"modified"`
		Unchanged int `json:"unchanged"`
	} `json:"stats"`
	NeedsTranslation []string       `json:"needs_translation"`
	Added            []string       `json:"added,omitempty"`
	Removed          []string       `json:"removed,omitempty"`
	Modified         []modifiedText `json:"modified,omitempty"`
}

type modifiedText struct {
	Key string `json:"key,omitempty"`
	Old string `json:"old"`
	New string `json:"new"`
}

func label(n xamlai.TextNode) string {
	if n.Key != "" {
		return n.Key
	}
	return n.ID
}

func (a *app) newDiffCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "diff <old.xaml> <new.xaml>",
		Short: "Compare the String entries of two versions of a dictionary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldNodes, err := extractFile(args[0])
			if err != nil {
				return err
			}
			newNodes, err := extractFile(args[1])
			if err != nil {
				return err
			}

			diff := xamlai.DiffContent(oldNodes, newNodes)
			stats := diff.Stats()

			if jsonOut {
				out := diffOutput{
					OldFile:          filepath.Base(args[0]),
					NewFile:          filepath.Base(args[1]),
					NeedsTranslation: []string{},
				}
				out.Stats.Added = stats.Added
				out.Stats.Removed = stats.Removed
				out.Stats.Modified = stats.Modified
				out.Stats.Unchanged = stats.Unchanged

				for _, n := range diff.NeedsTranslation() {
					out.NeedsTranslation = append(out.NeedsTranslation, label(n))
				}
				for _, n := range diff.Added {
					out.Added = append(out.Added, label(n))
				}
				for _, n := range diff.Removed {
					out.Removed = append(out.Removed, label(n))
				}
				for _, m := range diff.Modified {
					out.Modified = append(out.Modified, modifiedText{Key: m.New.Key, Old: m.Old.Text, New: m.New.Text})
				}

				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(a.stdout, "Diff: %s vs %s\n\n", filepath.Base(args[0]), filepath.Base(args[1]))
			fmt.Fprintf(a.stdout, "Summary:\n")
			fmt.Fprintf(a.stdout, "  Unchanged: %d\n", stats.Unchanged)
			fmt.Fprintf(a.stdout, "  Added:     %d\n", stats.Added)
			fmt.Fprintf(a.stdout, "  Removed:   %d\n", stats.Removed)
			fmt.Fprintf(a.stdout, "  Modified:  %d\n", stats.Modified)
			fmt.Fprintf(a.stdout, "\n")

			if !diff.HasChanges() {
				fmt.Fprintf(a.stdout, "No changes detected.\n")
				return nil
			}

			fmt.Fprintf(a.stdout, "Needs translation: %d strings\n\n", len(diff.NeedsTranslation()))

			if len(diff.Added) > 0 {
				fmt.Fprintf(a.stdout, "Added:\n")
				for _, n := range diff.Added {
					fmt.Fprintf(a.stdout, "  + %s %q\n", label(n), truncate(n.Text, 50))
				}
				fmt.Fprintf(a.stdout, "\n")
			}

			if len(diff.Modified) > 0 {
				fmt.Fprintf(a.stdout, "Modified:\n")
				for _, m := range diff.Modified {
					fmt.Fprintf(a.stdout, "  ~ %s %q -> %q\n", label(m.New), truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
				}
				fmt.Fprintf(a.stdout, "\n")
			}

			if len(diff.Removed) > 0 {
				fmt.Fprintf(a.stdout, "Removed:\n")
				for _, n := range diff.Removed {
					fmt.Fprintf(a.stdout, "  - %s %q\n", label(n), truncate(n.Text, 50))
				}
				fmt.Fprintf(a.stdout, "\n")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
