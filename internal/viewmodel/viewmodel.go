// Package viewmodel defines the JSON and template shapes of the wheel UI.
// They carry no behaviour so the templ views can import them freely.
package viewmodel

import "spinwheel/internal/config"

// WheelPage holds data for the wheel page template.
type WheelPage struct {
	Lang       string
	Title      string
	Text       string
	StatusText string
	SpinLabel  string
	InputLabel string
	VoiceLabel string
	Locked     bool
	Boot       WheelBoot
}

// WheelBoot is embedded in the page as JSON for the page script.
type WheelBoot struct {
	State           WheelState      `json:"state"`
	Messages        config.Messages `json:"messages"`
	SpeechLang      string          `json:"speechLang"`
	AutoSpinDelayMS int             `json:"autoSpinDelayMs"`
	MinOptions      int             `json:"minOptions"`
}

// WheelState is the public view of one wheel.
type WheelState struct {
	ID           string   `json:"id"`
	Locale       string   `json:"locale"`
	State        string   `json:"state"`
	Status       string   `json:"status"`
	StatusText   string   `json:"statusText"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	Labels       []string `json:"labels"`
	Revision     int      `json:"revision"`
	Rotation     int64    `json:"rotation"`
	DurationMS   int64    `json:"durationMs"`
	RemainingMS  int64    `json:"remainingMs"`
	InputsLocked bool     `json:"inputsLocked"`
	HasWinner    bool     `json:"hasWinner"`
	WinnerIndex  int      `json:"winnerIndex"`
	Winner       string   `json:"winner,omitempty"`
	ImageURL     string   `json:"imageUrl"`
}

// SpinResponse answers a spin request.
type SpinResponse struct {
	Started      bool       `json:"started"`
	ExtraDegrees int        `json:"extraDegrees"`
	TotalDegrees int        `json:"totalDegrees"`
	Rotation     int64      `json:"rotation"`
	DurationMS   int64      `json:"durationMs"`
	EndsAtMS     int64      `json:"endsAtMs"`
	Wheel        WheelState `json:"wheel"`
}

// TextRequest is the body of the options, voice and analyze endpoints.
type TextRequest struct {
	Text *string `json:"text"`
}

// ItemsResponse lists extracted options.
type ItemsResponse struct {
	Items []string `json:"items"`
}

// VoiceResponse reports extracted options and the wheel they were applied to.
type VoiceResponse struct {
	Items []string   `json:"items"`
	Wheel WheelState `json:"wheel"`
}

// ErrorResponse is every JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PrecacheManifest lists what the service worker caches on install.
type PrecacheManifest struct {
	Cache string   `json:"cache"`
	URLs  []string `json:"urls"`
}
