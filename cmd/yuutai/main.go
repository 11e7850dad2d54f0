package main

import (
	"os"

	"github.com/3vaseline3-ai/yuutai-site/cmd/yuutai/commands"
)

// main is the entry point for the yuutai CLI
// ⭐ 統合CLI入口: go run ./cmd/yuutai [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
