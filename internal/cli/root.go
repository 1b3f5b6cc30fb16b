package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assetimport",
		Short: "assetimport - bulk import of IT/OT asset inventories",
		Long: `assetimport maps the columns of a CSV or JSON asset export onto the asset schema,
previews the transformed rows with their validation errors and commits the valid ones.
Saved mapping profiles let the same export format be imported again without re-mapping.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(
		NewFieldsCmd(),
		NewAutomapCmd(),
		NewPreviewCmd(),
		NewCommitCmd(),
		NewMitigateCmd(),
	)

	return rootCmd
}
