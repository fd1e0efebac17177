package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/talent-screener/internal/ai"
	"github.com/spigell/talent-screener/internal/logger"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send a single prompt to the configured language model",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ask(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("context", "c", string(ai.ContextGeneral), "system context: extraction, question_generation or general")
}

func ask(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	contextName, _ := cmd.Flags().GetString("context")
	sc, err := ai.ParseSystemContext(contextName)
	if err != nil {
		logger.Fatal("parsing system context", zap.Error(err))
	}

	gateway, err := newGateway(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the gateway", zap.Error(err))
	}

	answer := gateway.Complete(ctx, strings.Join(args, " "), sc)
	fmt.Fprintln(cmd.OutOrStdout(), answer)
}
