package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/manifoldco/promptui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/talent-screener/internal/intake"
	"github.com/spigell/talent-screener/internal/logger"
	"github.com/spigell/talent-screener/internal/record"
	"go.uber.org/zap"
)

const (
	PromptStartOver  = "Start over"
	PromptShowInfo   = "Show candidate information"
	PromptDumpRecord = "Dump record to file"
	PromptExit       = "Exit"

	progressWidth = 30
)

var errExit = errors.New("exit requested")

var completionPrompt = promptui.Select{
	Label: "Screening finished. What next?",
	Items: []string{PromptStartOver, PromptShowInfo, PromptDumpRecord, PromptExit},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a screening conversation in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("plain", false, "print replies as raw markdown")
	chatCmd.Flags().StringP("record-format", "f", "", "record dump format: json or yaml")

	viper.BindPFlag("record.format", chatCmd.Flags().Lookup("record-format"))
}

// chatSession holds the terminal conversation.
type chatSession struct {
	machine *intake.Machine
	state   intake.State
	render  func(string) string
	out     io.Writer
	format  record.Format
	logger  *zap.Logger
}

func chat(cmd *cobra.Command) {
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

	format, err := record.ParseFormat(config.Record.Format)
	if err != nil {
		logger.Fatal("parsing record format", zap.Error(err))
	}

	machine, err := newMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the intake machine", zap.Error(err))
	}

	plain, _ := cmd.Flags().GetBool("plain")
	session := &chatSession{
		machine: machine,
		render:  newRenderer(plain, logger),
		out:     cmd.OutOrStdout(),
		format:  format,
		logger:  logger,
	}

	logger.Debug("starting the chat", zap.String("version", version))

	if err := session.run(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func (s *chatSession) run(ctx context.Context) error {
	var reply string
	s.state, reply = s.machine.Start(ctx)
	s.say(reply)

	for {
		if s.state.Stage == intake.StageCompleted {
			_, action, err := completionPrompt.Run()
			if err != nil {
				return errExit
			}
			if err := s.handleAction(ctx, action); err != nil {
				return err
			}
			continue
		}

		input, err := (&promptui.Prompt{Label: "You"}).Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				s.say(intake.FarewellMessage())
				return errExit
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if intake.IsExit(input) {
			_, reply := s.machine.ProcessTurn(ctx, s.state, input)
			s.say(reply)
			return errExit
		}

		s.state, reply = s.machine.ProcessTurn(ctx, s.state, input)
		s.say(reply)
		s.showProgress()
	}
}

func (s *chatSession) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptStartOver:
		var reply string
		s.state, reply = s.machine.ProcessTurn(ctx, s.machine.Reset(), "")
		s.say(reply)
		return nil
	case PromptShowInfo:
		s.say(intake.CandidateInfo(s.state))
		return nil
	case PromptDumpRecord:
		candidate, err := record.FromState(s.state, time.Now())
		if err != nil {
			return fmt.Errorf("build candidate record: %w", err)
		}
		filename, err := candidate.DumpToTmpFile(s.format)
		if err != nil {
			return fmt.Errorf("dump record to file: %w", err)
		}
		s.logger.Info("dumping record to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		s.say(intake.FarewellMessage())
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *chatSession) say(markdown string) {
	fmt.Fprintln(s.out, s.render(markdown))
}

func (s *chatSession) showProgress() {
	fmt.Fprintln(s.out, progressBar(intake.Progress(s.state), termenv.ColorProfile()))
}

// newRenderer renders markdown for the terminal. Rendering errors fall back
// to the raw text.
func newRenderer(plain bool, logger *zap.Logger) func(string) string {
	if plain {
		return func(s string) string { return s }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logger.Debug("markdown rendering disabled", zap.Error(err))
		return func(s string) string { return s }
	}

	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}

func progressBar(progress float64, profile termenv.Profile) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * progressWidth)
	bar := termenv.String(strings.Repeat("█", filled)).Foreground(profile.Color("#4CAF50")).String() +
		termenv.String(strings.Repeat("░", progressWidth-filled)).Foreground(profile.Color("#9E9E9E")).String()

	return fmt.Sprintf("Progress: %s %3d%%", bar, int(progress*100+0.5))
}
