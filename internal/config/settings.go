package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSettings []byte

// Settings is the wheel's YAML-configured behaviour.
type Settings struct {
	Locale  string            `yaml:"locale"`
	Locales map[string]Locale `yaml:"locales"`
	Spin    SpinSettings      `yaml:"spin"`
	Render  RenderSettings    `yaml:"render"`
	Offline OfflineSettings   `yaml:"offline"`
	Extract ExtractSettings   `yaml:"extract"`
}

// Locale holds the user-facing strings for one language.
type Locale struct {
	Title       string   `yaml:"title"`
	Placeholder []string `yaml:"placeholder"`
	Demo        []string `yaml:"demo"`
	SpeechLang  string   `yaml:"speech_lang"`
	Messages    Messages `yaml:"messages"`
}

// Messages are status and label strings shown on the page.
type Messages struct {
	Ready            string `yaml:"ready" json:"ready"`
	Thinking         string `yaml:"thinking" json:"thinking"`
	WinnerPrefix     string `yaml:"winner_prefix" json:"winnerPrefix"`
	TooFew           string `yaml:"too_few" json:"tooFew"`
	Spinning         string `yaml:"spinning" json:"spinning"`
	SpinButton       string `yaml:"spin_button" json:"spinButton"`
	InputLabel       string `yaml:"input_label" json:"inputLabel"`
	VoiceIdle        string `yaml:"voice_idle" json:"voiceIdle"`
	VoiceListening   string `yaml:"voice_listening" json:"voiceListening"`
	VoiceUnsupported string `yaml:"voice_unsupported" json:"voiceUnsupported"`
	VoiceWorking     string `yaml:"voice_working" json:"voiceWorking"`
	VoiceSuccess     string `yaml:"voice_success" json:"voiceSuccess"`
	VoiceEmpty       string `yaml:"voice_empty" json:"voiceEmpty"`
	VoiceFailed      string `yaml:"voice_failed" json:"voiceFailed"`
	SystemReady      string `yaml:"system_ready" json:"systemReady"`
}

// SpinSettings controls spin timing.
type SpinSettings struct {
	DurationMS      int `yaml:"duration_ms"`
	ExtraTurns      int `yaml:"extra_turns"`
	AutoSpinDelayMS int `yaml:"auto_spin_delay_ms"`
}

// RenderSettings controls the wheel image.
type RenderSettings struct {
	Size    int      `yaml:"size"`
	MaxSize int      `yaml:"max_size"`
	Palette []string `yaml:"palette"`
}

// OfflineSettings lists what the service worker pre-caches.
type OfflineSettings struct {
	CacheName string   `yaml:"cache_name"`
	Assets    []string `yaml:"assets"`
}

// ExtractSettings tunes the option-extraction prompt.
type ExtractSettings struct {
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float64 `yaml:"temperature"`
	TopK         int     `yaml:"top_k"`
	MaxTokens    int     `yaml:"max_tokens"`
}

// DefaultSettings returns the embedded settings.
func DefaultSettings() (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(defaultSettings, &s); err != nil {
		return nil, fmt.Errorf("parse embedded settings: %w", err)
	}
	return &s, nil
}

// LoadSettings reads path over the embedded defaults. An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	s, err := DefaultSettings()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the invariants the wheel relies on.
func (s *Settings) Validate() error {
	if len(s.Locales) == 0 {
		return errors.New("settings: no locales configured")
	}
	if _, ok := s.Locales[s.Locale]; !ok {
		return fmt.Errorf("settings: default locale %q is not configured", s.Locale)
	}
	for code, l := range s.Locales {
		if len(l.Placeholder) != 2 {
			return fmt.Errorf("settings: locale %q needs exactly two placeholder labels, got %d", code, len(l.Placeholder))
		}
	}
	if s.Spin.DurationMS <= 0 {
		return errors.New("settings: spin.duration_ms must be positive")
	}
	if s.Spin.ExtraTurns <= 0 {
		return errors.New("settings: spin.extra_turns must be positive")
	}
	if s.Render.Size <= 0 || s.Render.MaxSize < s.Render.Size {
		return fmt.Errorf("settings: invalid render size %d (max %d)", s.Render.Size, s.Render.MaxSize)
	}
	if len(s.Render.Palette) == 0 {
		return errors.New("settings: render.palette is empty")
	}
	return nil
}

// SupportedLocales returns the configured locale codes, sorted.
func (s *Settings) SupportedLocales() []string {
	out := make([]string, 0, len(s.Locales))
	for code := range s.Locales {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// ResolveLocale picks the best configured locale for code, matching on the
// primary subtag ("en-GB" -> "en") and falling back to the default.
func (s *Settings) ResolveLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := s.Locales[code]; ok {
		return code
	}
	if i := strings.IndexAny(code, "-_"); i > 0 {
		if _, ok := s.Locales[code[:i]]; ok {
			return code[:i]
		}
	}
	return s.Locale
}

// LocaleFor returns the locale strings for code.
func (s *Settings) LocaleFor(code string) Locale {
	return s.Locales[s.ResolveLocale(code)]
}

// SpinDuration is the spin transition length.
func (s *Settings) SpinDuration() time.Duration {
	return time.Duration(s.Spin.DurationMS) * time.Millisecond
}

// PlaceholderPair returns the two labels shown for an empty list.
func (l Locale) PlaceholderPair() [2]string {
	var p [2]string
	copy(p[:], l.Placeholder)
	return p
}

// DemoText is the initial content of a new wheel.
func (l Locale) DemoText() string {
	return strings.Join(l.Demo, "\n")
}
