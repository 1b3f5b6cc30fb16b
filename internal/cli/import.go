package cli

import (
	"github.com/spf13/cobra"
)

type ImportOptions struct {
	File        string
	MappingFile string
	SaveMapping string
	Limit       int
	ErrorPolicy string
	EnumPolicy  string
	Store       string
	Debug       bool

	Assign   []string
	Unassign []string
	Custom   []string
	HWCustom []string
}

func (o *ImportOptions) addFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "CSV or JSON file to import (required)")
	cmd.Flags().StringVarP(&o.MappingFile, "mapping", "m", "", "Saved mapping profile (.json or .yaml)")
	cmd.Flags().StringArrayVar(&o.Assign, "map", nil, "Map a column to a field, as Column=field.path (repeatable)")
	cmd.Flags().StringArrayVar(&o.Unassign, "unmap", nil, "Do not import a column (repeatable)")
	cmd.Flags().StringArrayVar(&o.Custom, "custom", nil, "Import a column into extended.<key>, as Column=key (repeatable)")
	cmd.Flags().StringArrayVar(&o.HWCustom, "hw-custom", nil, "Import a column into hardware.extended.<key>, as Column=key (repeatable)")
	cmd.Flags().StringVar(&o.EnumPolicy, "enum-policy", "", "How to treat values outside an enum: lenient, strict or warn")
	cmd.MarkFlagRequired("file")
}

func (o *ImportOptions) addPreviewFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.Limit, "limit", "l", 0, "Number of rows to preview (default IMPORT_PREVIEW_LIMIT)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Dump transformed records and enable debug logging")
}

func NewFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the importable asset fields",
		RunE: func(c *cobra.Command, args []string) error {
			return runFields(c)
		},
	}
}

func NewAutomapCmd() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "automap",
		Short: "Propose a column mapping for a file",
		RunE: func(c *cobra.Command, args []string) error {
			return runAutomap(c, opts)
		},
	}

	opts.addFileFlags(cmd)
	cmd.Flags().StringVarP(&opts.SaveMapping, "output", "o", "", "Save the resulting mapping profile to this file")
	return cmd
}

func NewPreviewCmd() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Transform and validate the first rows of a file",
		RunE: func(c *cobra.Command, args []string) error {
			return runPreview(c, opts)
		},
	}

	opts.addFileFlags(cmd)
	opts.addPreviewFlags(cmd)
	return cmd
}

func NewCommitCmd() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Import every valid row of a file",
		RunE: func(c *cobra.Command, args []string) error {
			return runCommit(c, opts)
		},
	}

	opts.addFileFlags(cmd)
	opts.addPreviewFlags(cmd)
	cmd.Flags().StringVarP(&opts.ErrorPolicy, "policy", "p", "", "Error policy: skipInvalidRows or stopOnFirstError")
	cmd.Flags().StringVarP(&opts.Store, "store", "s", "", "Override ASSET_STORE: none, mongo or sqlserver")
	return cmd
}

type MitigateOptions struct {
	ImportOptions
	DeviceID string
}

func NewMitigateCmd() *cobra.Command {
	opts := &MitigateOptions{}

	cmd := &cobra.Command{
		Use:   "mitigate",
		Short: "Suggest security mitigations for the assets in a file",
		RunE: func(c *cobra.Command, args []string) error {
			return runMitigate(c, opts)
		},
	}

	opts.addFileFlags(cmd)
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Number of rows to consider (default IMPORT_PREVIEW_LIMIT)")
	cmd.Flags().StringVarP(&opts.DeviceID, "device", "d", "", "Only suggest for this device ID")
	return cmd
}
