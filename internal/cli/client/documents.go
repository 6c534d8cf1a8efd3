package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Document is one stored document as listed by the server.
type Document struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// DocumentList is one page of documents.
type DocumentList struct {
	Documents []Document `json:"documents"`
	Cursor    string     `json:"cursor,omitempty"`
	HasMore   bool       `json:"has_more"`
}

// DocumentSource is a download link for an archived document.
type DocumentSource struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// DocumentsCmd creates the documents command and its subcommands.
func DocumentsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List ingested documents",
		Long:    "Lists ingested documents, newest first.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListDocuments(cmd, limit, cursor)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of documents")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <file-name>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowDocument(cmd, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "source <file-name>",
		Short: "Print a download link for the archived document text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentSource(cmd, args[0])
		},
	})

	return cmd
}

func runListDocuments(cmd *cobra.Command, limit int, cursor string) error {
	asJSON, err := wantJSON(cmd)
	if err != nil {
		return err
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get(cmd.Context(), "/documents?"+query.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var list DocumentList
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse documents: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, list)
	}

	if len(list.Documents) == 0 {
		fmt.Fprintln(out, "No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHUNKS\tINGESTED")
	for _, doc := range list.Documents {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", doc.FileName, doc.ChunkCount, doc.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if list.HasMore && list.Cursor != "" {
		fmt.Fprintf(out, "\nMore documents available. Use --cursor %s\n", list.Cursor)
	}
	return nil
}

func runShowDocument(cmd *cobra.Command, fileName string) error {
	asJSON, err := wantJSON(cmd)
	if err != nil {
		return err
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(cmd.Context(), "/documents/"+url.PathEscape(fileName))
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, doc)
	}
	fmt.Fprintf(out, "Name:     %s\nChunks:   %d\nIngested: %s\n", doc.FileName, doc.ChunkCount, doc.CreatedAt)
	return nil
}

func runDocumentSource(cmd *cobra.Command, fileName string) error {
	asJSON, err := wantJSON(cmd)
	if err != nil {
		return err
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(cmd.Context(), "/documents/"+url.PathEscape(fileName)+"/source")
	if err != nil {
		return fmt.Errorf("source failed: %w", err)
	}

	var source DocumentSource
	if err := json.Unmarshal(resp.Data, &source); err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), source)
	}
	fmt.Fprintln(cmd.OutOrStdout(), source.URL)
	return nil
}
