/*
Copyright © 2025 vivekcarvalho
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vivekcarvalho/profile-chatbot-be/config"
	"github.com/vivekcarvalho/profile-chatbot-be/database"
	"github.com/vivekcarvalho/profile-chatbot-be/service"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the profile bot in the terminal",
	Long:  `Runs an interactive terminal session against the ingested profile.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		embedder, err := service.NewOpenAIEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("Failed to create embedding service: %v", err)
		}
		ragEngine := service.NewRAGEngine(weaviateDb, embedder, cfg.Retrieval.TopK, cfg.Retrieval.FetchK)
		if err := ragEngine.Load(ctx); err != nil {
			log.Fatalf("Failed to load vector store: %v", err)
		}

		bot := service.NewProfileChatbot(newChatModel(cfg), ragEngine, cfg.MaxHistory)

		fmt.Println(bot.GetGreeting(ctx))
		fmt.Println(`(type "exit" to end the session)`)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			query := strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}
			reply := bot.Chat(ctx, query)
			fmt.Println(reply)
			if strings.Contains(strings.ToLower(query), "exit") {
				break
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
