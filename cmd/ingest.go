/*
Copyright © 2025 vivekcarvalho
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/vivekcarvalho/profile-chatbot-be/config"
	"github.com/vivekcarvalho/profile-chatbot-be/database"
	"github.com/vivekcarvalho/profile-chatbot-be/service"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a profile document into the vector store",
	Long: `Parses a profile document (.docx or pre-extracted .json elements),
chunks it along its section hierarchy, embeds the chunks and loads them
into Weaviate. Run once before starting the server, or again with
--reinit to replace the stored profile.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if filePath == "" {
			log.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if reinit {
			if err := weaviateDb.ReInit(ctx); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
			}
		} else if err := weaviateDb.EnsureClass(ctx); err != nil {
			log.Fatalf("Failed to ensure chunk class: %v", err)
		}

		docService := service.NewDocumentService()
		elements, err := docService.ParseFile(filePath)
		if err != nil {
			log.Fatalf("Failed to parse document: %v", err)
		}
		log.Printf("Parsed %d structural elements from %s", len(elements), filePath)

		chunker, err := service.NewChunkerService(cfg.Chunker)
		if err != nil {
			log.Fatalf("Failed to create chunker: %v", err)
		}
		chunks := chunker.Chunk(elements)
		if len(chunks) == 0 {
			log.Fatal("Document produced no chunks, nothing to ingest")
		}
		log.Printf("Built %d enriched chunks", len(chunks))

		embedder, err := service.NewOpenAIEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("Failed to create embedding service: %v", err)
		}
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		vectors, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			log.Fatalf("Failed to embed chunks: %v", err)
		}

		if err := weaviateDb.BatchInsertChunks(ctx, chunks, vectors); err != nil {
			log.Fatalf("Failed to insert chunks: %v", err)
		}
		log.Printf("Ingested %d chunks into Weaviate", len(chunks))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("file", "f", "", "Path to the profile document (.docx or .json)")
	ingestCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the chunk class before ingesting")
}
