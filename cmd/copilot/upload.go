package main

import (
	"errors"
	"os"

	"job-copilot/internal/adapter/client"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a CV and/or transcript as plain text files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cvPath, _ := cmd.Flags().GetString("cv")
		transcriptPath, _ := cmd.Flags().GetString("transcript")
		if cvPath == "" && transcriptPath == "" {
			return errors.New("pass --cv and/or --transcript")
		}

		files := map[string]client.FileUpload{}
		for field, path := range map[string]string{"cv": cvPath, "transcript": transcriptPath} {
			if path == "" {
				continue
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files[field] = client.FileUpload{Name: path, Content: b}
		}

		if err := newClient().UploadFiles(cmd.Context(), v.GetString("user"), files); err != nil {
			return err
		}
		printf(cmd, "Documents uploaded.\n")
		return nil
	},
}

func init() {
	uploadCmd.Flags().String("cv", "", "path to the CV text file")
	uploadCmd.Flags().String("transcript", "", "path to the transcript text file")
}
