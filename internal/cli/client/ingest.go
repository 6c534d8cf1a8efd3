package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// IngestRequest is the body of POST /documents.
type IngestRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

// IngestResult mirrors the server's ingestion result.
type IngestResult struct {
	FileName      string `json:"file_name"`
	ChunksCreated int    `json:"chunks_created"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a text document",
		Long: `Uploads a UTF-8 text document to be chunked, embedded and stored.
Ingesting a document again under the same name replaces its chunks.
Use "-" to read the document from stdin (requires --name).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Document name (defaults to the file's base name)")

	return cmd
}

func runIngest(cmd *cobra.Command, path, name string) error {
	asJSON, err := wantJSON(cmd)
	if err != nil {
		return err
	}

	text, fileName, err := readDocument(cmd.InOrStdin(), path, name)
	if err != nil {
		return err
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(cmd.Context(), "/documents", IngestRequest{FileName: fileName, Text: text})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var result IngestResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse ingest result: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := printJSON(out, result); err != nil {
			return err
		}
	} else if result.Success {
		fmt.Fprintf(out, "Ingested %s: %d chunks\n", result.FileName, result.ChunksCreated)
	}

	if !result.Success {
		return fmt.Errorf("ingestion of %s failed: %s", result.FileName, result.ErrorMessage)
	}
	return nil
}

func readDocument(stdin io.Reader, path, name string) (string, string, error) {
	if path == "-" {
		if name == "" {
			return "", "", fmt.Errorf("--name is required when reading from stdin")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), name, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return string(data), name, nil
}
