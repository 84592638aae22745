package agent

import "errors"

// Common errors returned by sessions.
var (
	ErrMissingAPIKey  = errors.New("agent: missing API key")
	ErrNotConnected   = errors.New("agent: session not connected")
	ErrAlreadyStarted = errors.New("agent: session already started")
)

// Session defaults. Gemini Live handles VAD, ASR and TTS in one
// bidirectional stream; we only pick the model and the voice.
const (
	DefaultModel = "models/gemini-2.0-flash-exp"
	DefaultVoice = "Aoede"
)

// Config declares the session. It is sent once at mount and never
// updated mid-session.
type Config struct {
	// APIKey authenticates the websocket dial.
	APIKey string

	// Model is the Gemini Live model identifier.
	Model string

	// Voice selects the prebuilt voice for audio responses
	// (Puck, Charon, Kore, Fenrir, Aoede).
	Voice string

	// SystemPrompt instructs the model when and how to call the two
	// schedule functions and which language and tone to answer in.
	SystemPrompt string
}

// DefaultConfig returns a Config with sensible defaults. The API key
// and system prompt still need to be filled in.
func DefaultConfig() Config {
	return Config{
		Model: DefaultModel,
		Voice: DefaultVoice,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("agent: model is required")
	}
	return nil
}

// WithAPIKey returns a copy with the API key set.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// WithModel returns a copy with the model set.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithVoice returns a copy with the voice set.
func (c Config) WithVoice(voice string) Config {
	c.Voice = voice
	return c
}

// WithSystemPrompt returns a copy with the system prompt set.
func (c Config) WithSystemPrompt(prompt string) Config {
	c.SystemPrompt = prompt
	return c
}
