/*
Copyright © 2025 vivekcarvalho
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/vivekcarvalho/profile-chatbot-be/config"
	"github.com/vivekcarvalho/profile-chatbot-be/database"
	"github.com/vivekcarvalho/profile-chatbot-be/handler"
	"github.com/vivekcarvalho/profile-chatbot-be/repository"
	"github.com/vivekcarvalho/profile-chatbot-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the chat server",
	Long:  `Starts the HTTP and websocket server for the profile chatbot`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		embedder, err := service.NewOpenAIEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("Failed to create embedding service: %v", err)
		}

		llm := newChatModel(cfg)

		ragEngine := service.NewRAGEngine(weaviateDb, embedder, cfg.Retrieval.TopK, cfg.Retrieval.FetchK)
		if err := ragEngine.Load(context.Background()); err != nil {
			log.Fatalf("Failed to load vector store: %v", err)
		}

		var chatLogRepo repository.ChatLogRepo
		if cfg.MongoDBURI != "" {
			mongoClient, err := database.NewMongoClient(context.Background(), cfg.MongoDBURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			mongoDb := mongoClient.Database("profile_chatbot")
			chatLogRepo = repository.NewChatLogRepo(mongoDb.Collection("chat_logs"))
		} else {
			log.Println("MONGODB_URI not set, chat transcripts will not be persisted")
		}

		newSession := func() *service.ProfileChatbot {
			return service.NewProfileChatbot(llm, ragEngine, cfg.MaxHistory)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(newSession, chatLogRepo)
		wsService := service.NewWebSocketService(newSession)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.GET("/greeting", chatHandler.HandleGreeting)
			apiV1.GET("/farewell", chatHandler.HandleFarewell)
			apiV1.GET("/history", chatHandler.HandleHistory)
			apiV1.GET("/transcript", chatHandler.HandleTranscript)
			apiV1.POST("/clear", chatHandler.HandleClear)
		}
		router.GET("/ws", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})
		router.GET("/health", gin.WrapH(wsService.Health()))

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// newChatModel picks the configured LLM provider.
func newChatModel(cfg *config.Config) service.ChatModel {
	switch cfg.LLMProvider {
	case "google":
		llm, err := service.NewGeminiService(cfg.GoogleAPIKeys, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			log.Fatalf("Failed to create Gemini service: %v", err)
		}
		return llm
	default:
		llm, err := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			log.Fatalf("Failed to create OpenAI service: %v", err)
		}
		return llm
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
