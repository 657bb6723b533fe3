package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/rephrase/pkg/llm"
)

const askLongDesc string = `Ask a running rephrase relay to reword a sentence.

The relay returns the provider's text verbatim. When writing to a
terminal, ask splits it into lines and prints a numbered list; use
--raw (or pipe the output) to get the text exactly as returned.

Examples:
  rephrase ask "I am happy today."
  rephrase ask --server http://192.168.1.42:3001 "See you tomorrow."
  rephrase ask --raw "Thanks for your help." > variants.txt`

const askShortDesc string = "Reword a sentence using a running relay"

type askCommander struct {
	serverURL string
	raw       bool
	timeout   time.Duration
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <sentence>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:3001", "Relay base URL")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the relay's text verbatim")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 5*time.Minute, "Request timeout")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, sentence string) error {
	serverURL := strings.TrimRight(c.serverURL, "/")

	text, err := c.paraphrase(ctx, serverURL, sentence)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.raw || !isTerminal(out) {
		fmt.Fprintln(out, text)
		return nil
	}

	lines := Lines(text)
	if len(lines) == 0 {
		fmt.Fprintln(out, "The relay returned no paraphrases.")
		return nil
	}

	fmt.Fprint(out, Render(sentence, lines))
	return nil
}

func (c *askCommander) paraphrase(ctx context.Context, serverURL, sentence string) (string, error) {
	body, err := json.Marshal(llm.ParaphraseRequest{Sentence: sentence})
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/paraphrase", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp llm.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
			return "", fmt.Errorf("relay returned %d: %s", resp.StatusCode, string(respBody))
		}
		if len(errResp.Details) > 0 {
			return "", fmt.Errorf("relay returned %d: %s (details: %s)", resp.StatusCode, errResp.Error, string(errResp.Details))
		}
		return "", fmt.Errorf("relay returned %d: %s", resp.StatusCode, errResp.Error)
	}

	var result llm.ParaphraseResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("could not decode response: %w", err)
	}

	return result.Paraphrases, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
