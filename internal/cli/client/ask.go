package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question   string `json:"question"`
	TopK       *int   `json:"top_k,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// AskResponse is the answer with its citations.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	AskID     string   `json:"ask_id,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		topK       int
		fileName   string
		documentID string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ingested documents",
		Long:  "Retrieves the most similar chunks and answers the question from them, listing the sources used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := AskRequest{Question: args[0], FileName: fileName, DocumentID: documentID}
			if cmd.Flags().Changed("top-k") {
				req.TopK = &topK
			}
			return runAsk(cmd, req)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (server default when unset)")
	cmd.Flags().StringVarP(&fileName, "file", "f", "", "Only search chunks of this file")
	cmd.Flags().StringVar(&documentID, "document", "", "Only search chunks of this document ID")

	return cmd
}

func runAsk(cmd *cobra.Command, req AskRequest) error {
	asJSON, err := wantJSON(cmd)
	if err != nil {
		return err
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(cmd.Context(), "/ask", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer AskResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, answer)
	}

	fmt.Fprintln(out, answer.Answer)
	if len(answer.Citations) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for i, citation := range answer.Citations {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, citation)
		}
	}
	return nil
}
