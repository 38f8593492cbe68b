// Package cli implements the cobra command surface. Commands talk to
// the core exclusively through the driving ports configured via
// SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driving"
	"github.com/docwhisper-labs/docwhisper-cli/internal/logger"
)

// version is set by the main package at startup.
var version = "dev"

// Services the commands drive. Nil services make the corresponding
// commands fail with a configuration error instead of panicking.
var (
	engineService driving.EngineService
	answerService driving.AnswerService
	documentStore driven.DocumentStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docwhisper",
	Short: "Ask questions grounded in your local PDF library",
	Long: `DocWhisper indexes the text of your PDF files locally and answers
questions grounded in the most relevant passages.

Documents are chunked, embedded and cached in a local SQLite database;
answers come from a local Ollama model fed with the retrieved context.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services groups the ports the CLI needs.
type Services struct {
	Engine driving.EngineService
	Answer driving.AnswerService
	Store  driven.DocumentStore
}

// SetServices wires the core services into the command tree. Called by
// main before Execute.
func SetServices(s Services) {
	engineService = s.Engine
	answerService = s.Answer
	documentStore = s.Store
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
