package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/talent-screener/internal/ai"
	"github.com/spigell/talent-screener/internal/ai/openai"
	"github.com/spigell/talent-screener/internal/questions"
)

const (
	app       = "talent-screener"
	envPrefix = "TALENT_SCREENER"
)

type Config struct {
	Intake *IntakeConfig `mapstructure:"intake"`
	AI     *AIConfig     `mapstructure:"ai"`
	Server *ServerConfig `mapstructure:"server"`
	Record *RecordConfig `mapstructure:"record"`
}

type IntakeConfig struct {
	StrictValidation bool              `mapstructure:"strict-validation"`
	ExtractWithAI    bool              `mapstructure:"extract-with-ai"`
	AIQuestions      bool              `mapstructure:"ai-questions"`
	ExtraTopics      []questions.Topic `mapstructure:"extra-topics"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	BaseURL     string  `mapstructure:"base-url"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max-tokens"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type RecordConfig struct {
	Format string `mapstructure:"format"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talent-screener is a conversational intake assistant that screens technology candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talent-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Bool("ai", false, "enable the language model gateway")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.enabled", rootCmd.PersistentFlags().Lookup("ai"))
}

func setDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("intake.strict-validation", false)
	v.SetDefault("intake.extract-with-ai", false)
	v.SetDefault("intake.ai-questions", false)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.timeout", ai.DefaultTimeout)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.openai.base-url", openai.DefaultBaseURL)
	v.SetDefault("ai.openai.model", openai.DefaultModel)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.temperature", 0.7)
	v.SetDefault("ai.openai.max-tokens", 300)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.temperature", 0.7)

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("record.format", "json")
}

func initConfig() {
	// version needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads file, or talent-screener.yaml from the current directory
// when file is empty. Only an explicitly requested file has to exist.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	err := v.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Intake == nil {
		config.Intake = &IntakeConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Record == nil {
		config.Record = &RecordConfig{}
	}

	return config, nil
}
