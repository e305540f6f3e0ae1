package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydrolabs/olicloud-go/internal/oli"
)

var (
	deleteForce bool

	uploadKeep bool

	generateInflows   []string
	generateFramework string
	generateModelName string
	generatePhases    []string
	generateDatabanks []string
	generateKeep      bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage chemistry (DBS) files on the OLI Cloud",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List DBS files stored for the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := oliClient.GetUserDBSFileIDs(cmd.Context())
		if err != nil {
			return fmt.Errorf("list DBS files: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No DBS files found")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <file-id>...",
	Short: "Delete DBS files from the OLI Cloud",
	Long: `Delete one or more DBS files by ID.

Requires confirmation unless --force is used.

Examples:
  olicloud files delete 2f3a9c
  olicloud files delete 2f3a9c 77be01 --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilesDelete,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a DBS file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess := oliClient.OpenSession()
		defer sess.Close(ctx)

		fileID, err := sess.UploadDBSFile(ctx, args[0], uploadKeep)
		if err != nil {
			return fmt.Errorf("upload DBS file: %w", err)
		}
		fmt.Printf("Uploaded: %s\n", fileID)
		if !uploadKeep {
			fmt.Println("File will be removed on exit; pass --keep to retain it.")
		}
		return nil
	},
}

var filesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a chemistry model (DBS file) server-side",
	Long: `Generate a DBS file from inflow names and chemistry model options.

Examples:
  olicloud files generate --inflow NaCl --inflow CaSO4 --keep
  olicloud files generate --inflow NaCl --framework "Aqueous (H+ ion)" --phase liquid1 --phase vapor`,
	RunE: runFilesGenerate,
}

var filesSummaryCmd = &cobra.Command{
	Use:   "summary <file-id>",
	Short: "Show chemistry info and flash history for a DBS file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := oliClient.GetDBSFileSummary(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("summarize DBS file: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	filesDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	filesUploadCmd.Flags().BoolVar(&uploadKeep, "keep", true, "retain the file after exit")

	filesGenerateCmd.Flags().StringArrayVar(&generateInflows, "inflow", nil, "inflow solute name (repeatable)")
	filesGenerateCmd.Flags().StringVar(&generateFramework, "framework", "", `thermodynamic framework ("MSE (H3O+ ion)" or "Aqueous (H+ ion)")`)
	filesGenerateCmd.Flags().StringVar(&generateModelName, "model-name", "", "chemistry model name")
	filesGenerateCmd.Flags().StringArrayVar(&generatePhases, "phase", nil, "phase to include (repeatable)")
	filesGenerateCmd.Flags().StringArrayVar(&generateDatabanks, "databank", nil, "private databank to include (repeatable)")
	filesGenerateCmd.Flags().BoolVar(&generateKeep, "keep", true, "retain the file after exit")

	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesGenerateCmd)
	filesCmd.AddCommand(filesSummaryCmd)
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !deleteForce {
		fmt.Printf("About to delete %d DBS file(s): %s\n", len(args), strings.Join(args, ", "))
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	failed := 0
	for _, id := range args {
		if err := oliClient.DeleteDBSFile(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete %s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("Deleted: %s\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", failed, len(args))
	}
	return nil
}

func runFilesGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inflows := make(map[string]any, len(generateInflows))
	for _, name := range generateInflows {
		inflows[name] = nil
	}

	sess := oliClient.OpenSession()
	defer sess.Close(ctx)

	fileID, err := sess.GenerateDBSFile(ctx, oli.GenerateOptions{
		Inflows:         inflows,
		ThermoFramework: generateFramework,
		ModelName:       generateModelName,
		Phases:          generatePhases,
		Databanks:       generateDatabanks,
		KeepFile:        generateKeep,
	})
	if err != nil {
		return fmt.Errorf("generate DBS file: %w", err)
	}
	fmt.Printf("Generated: %s\n", fileID)
	return nil
}
