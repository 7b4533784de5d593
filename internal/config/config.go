package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/common"
	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/plaid"
	"github.com/Veraticus/origin/internal/simplefin"
)

// EnvPrefix is the prefix for environment overrides, e.g. ORIGIN_SERVER_ADDR.
const EnvPrefix = "ORIGIN"

// Configuration keys.
const (
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyDatabasePath    = "database.path"
	KeyServerAddr      = "server.addr"
	KeyDangerZonePath  = "dangerzones.path"
	KeyDangerZoneLimit = "dangerzones.limit"
	KeyLLMProvider     = "llm.provider"
	KeyLLMAPIKey       = "llm.api_key"
	KeyLLMBaseURL      = "llm.base_url"
	KeyLLMMaxTokens    = "llm.max_tokens"
	KeyLLMRateLimit    = "llm.rate_limit"
	KeyModelFast       = "models.fast"
	KeyModelComplex    = "models.complex"
	KeyModelQuant      = "models.quantitative"
	KeyWorkflowPause   = "advisor.workflow_pause"
	KeyPlaidClientID   = "plaid.client_id"
	KeyPlaidSecret     = "plaid.secret"
	KeyPlaidEnv        = "plaid.environment"
	KeyPlaidToken      = "plaid.access_token"
	KeySimpleFINToken  = "simplefin.token"
	KeySimpleFINURL    = "simplefin.access_url"
	KeySimpleFINState  = "simplefin.state_path"
	KeyTheme           = "tui.theme"
)

// apiKeyEnvVars are consulted in order when llm.api_key is unset.
var apiKeyEnvVars = []string{"DEDALUS_API_KEY", "EXPO_PUBLIC_DEDALUS_API_KEY", "OPENAI_API_KEY"}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	tiers := advisor.DefaultTiers()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/origin/origin.db")
	v.SetDefault(KeyServerAddr, ":5001")
	v.SetDefault(KeyDangerZonePath, "$HOME/.local/share/origin/danger_zones.json")
	v.SetDefault(KeyDangerZoneLimit, 3)
	v.SetDefault(KeyLLMProvider, "dedalus")
	v.SetDefault(KeyLLMMaxTokens, 2048)
	v.SetDefault(KeyLLMRateLimit, 0)
	v.SetDefault(KeyModelFast, string(tiers.Fast))
	v.SetDefault(KeyModelComplex, string(tiers.Complex))
	v.SetDefault(KeyModelQuant, string(tiers.Quantitative))
	v.SetDefault(KeyWorkflowPause, advisor.DefaultWorkflowPause)
	v.SetDefault(KeyPlaidEnv, "sandbox")
	v.SetDefault(KeyTheme, "default")
}

// BindEnv enables ORIGIN_ prefixed environment overrides for dotted keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// APIKey returns the configured provider key, falling back to the
// well-known environment variables.
func APIKey(v *viper.Viper) string {
	if key := v.GetString(KeyLLMAPIKey); key != "" {
		return key
	}
	for _, name := range apiKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// LLM builds the provider client configuration.
func LLM(v *viper.Viper) (llm.Config, error) {
	key := APIKey(v)
	if key == "" {
		return llm.Config{}, common.NewUserError(
			fmt.Sprintf("no API key found; set %s or one of %s", KeyLLMAPIKey, strings.Join(apiKeyEnvVars, ", ")),
			common.ErrMissingConfig,
		)
	}
	return llm.Config{
		Provider:  v.GetString(KeyLLMProvider),
		APIKey:    key,
		BaseURL:   v.GetString(KeyLLMBaseURL),
		MaxTokens: v.GetInt(KeyLLMMaxTokens),
		RateLimit: v.GetInt(KeyLLMRateLimit),
	}, nil
}

// Tiers returns the model identifiers for each routing tier.
func Tiers(v *viper.Viper) advisor.Tiers {
	return advisor.Tiers{
		Fast:         model.ModelID(v.GetString(KeyModelFast)),
		Complex:      model.ModelID(v.GetString(KeyModelComplex)),
		Quantitative: model.ModelID(v.GetString(KeyModelQuant)),
	}
}

// WorkflowPause returns the delay between workflow steps.
func WorkflowPause(v *viper.Viper) time.Duration {
	return v.GetDuration(KeyWorkflowPause)
}

// Plaid returns the Plaid credentials; Configured reports false when none
// were supplied.
func Plaid(v *viper.Viper) plaid.Config {
	return plaid.Config{
		ClientID:    v.GetString(KeyPlaidClientID),
		Secret:      v.GetString(KeyPlaidSecret),
		Environment: v.GetString(KeyPlaidEnv),
		AccessToken: v.GetString(KeyPlaidToken),
	}
}

// SimpleFIN returns the SimpleFIN bridge credentials. An empty state path
// means the package default.
func SimpleFIN(v *viper.Viper) simplefin.Config {
	return simplefin.Config{
		Token:     v.GetString(KeySimpleFINToken),
		AccessURL: v.GetString(KeySimpleFINURL),
		StatePath: ExpandPath(v.GetString(KeySimpleFINState)),
	}
}

// DatabasePath returns the expanded SQLite path.
func DatabasePath(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyDatabasePath))
}

// DangerZonePath returns the expanded danger-zone feed path.
func DangerZonePath(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyDangerZonePath))
}
