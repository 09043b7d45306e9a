package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/perodin/parley/internal/core"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat against a running parley server",
		RunE:  runChat,
	}

	cmd.Flags().String("server", "http://127.0.0.1:8001", "chat service base URL")

	return cmd
}

type chatTurnResponse struct {
	Message        string  `json:"message"`
	ConversationID string  `json:"conversation_id"`
	ProcessingTime float64 `json:"processing_time"`
}

func runChat(cmd *cobra.Command, _ []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	serverURL = strings.TrimSuffix(serverURL, "/")

	client := &http.Client{Timeout: 120 * time.Second}
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== parley chat ===")
	fmt.Println("Type a message and press enter. 'quit' or 'exit' to stop.")
	fmt.Println()

	// History lives on this side of the wire: the server is stateless and
	// expects the full transcript with every turn.
	var history []core.Message
	var conversationID string

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if input == "quit" || input == "exit" || input == "q" {
			fmt.Println("bye")
			return nil
		}

		reply, err := sendTurn(client, serverURL, input, conversationID, history)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}

		fmt.Printf("\n%s\n(%.2fs)\n\n", reply.Message, reply.ProcessingTime)

		conversationID = reply.ConversationID
		history = append(history,
			core.Message{Role: core.RoleUser, Content: input},
			core.Message{Role: core.RoleAssistant, Content: reply.Message},
		)
	}
}

func sendTurn(client *http.Client, serverURL, message, conversationID string, history []core.Message) (chatTurnResponse, error) {
	requestBody := map[string]any{
		"message":      message,
		"chat_history": history,
	}

	if conversationID != "" {
		requestBody["conversation_id"] = conversationID
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return chatTurnResponse{}, err
	}

	httpResp, err := client.Post(serverURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return chatTurnResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var errorPayload struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(httpResp.Body).Decode(&errorPayload); err == nil && errorPayload.Detail != "" {
			return chatTurnResponse{}, fmt.Errorf("%s: %s", httpResp.Status, errorPayload.Detail)
		}

		return chatTurnResponse{}, errors.New(httpResp.Status)
	}

	var reply chatTurnResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&reply); err != nil {
		return chatTurnResponse{}, err
	}

	return reply, nil
}
