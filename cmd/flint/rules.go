package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"flint/internal/rules"
)

var rulesFormat string

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "pretty", "output format (pretty|json)")
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List every style rule flint knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch rulesFormat {
		case "pretty":
			out := cmd.OutOrStdout()
			for _, rule := range rules.All() {
				fmt.Fprintf(out, "%-8s %-8s %-28s %s\n",
					rule.Code.ID(), rule.Severity.String(), rule.Name, rule.Doc)
			}
			return nil
		case "json":
			type ruleJSON struct {
				Code     string `json:"code"`
				Name     string `json:"name"`
				Severity string `json:"severity"`
				Doc      string `json:"doc"`
			}
			payload := make([]ruleJSON, 0, len(rules.All()))
			for _, rule := range rules.All() {
				payload = append(payload, ruleJSON{
					Code:     rule.Code.ID(),
					Name:     rule.Name,
					Severity: rule.Severity.String(),
					Doc:      rule.Doc,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", rulesFormat)
		}
	},
}
