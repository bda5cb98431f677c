/*
Copyright © 2025 vivekcarvalho
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/vivekcarvalho/profile-chatbot-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// Missing .env is fine when real env vars are injected by the deployment.
	godotenv.Load()
}
