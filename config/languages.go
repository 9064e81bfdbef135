package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/transcribe"
)

// ErrUnknownLanguage is returned for a language outside Languages.
var ErrUnknownLanguage = errors.New("unknown language")

// LanguageOption is one selectable transcription language. Auto-detect has
// an empty Code.
type LanguageOption struct {
	Name string
	Code string
}

// AutoDetect is the display name of the auto-detect choice.
const AutoDetect = "Auto-detect language"

// DefaultLanguage is used when no language is chosen.
const DefaultLanguage = "Hindi"

// Languages lists the choices in prompt order.
var Languages = []LanguageOption{
	{Name: AutoDetect},
	{Name: "Kannada", Code: "kn"},
	{Name: "Hindi", Code: "hi"},
	{Name: "Tamil", Code: "ta"},
	{Name: "Marathi", Code: "mr"},
	{Name: "Gujarati", Code: "gu"},
	{Name: "Punjabi", Code: "pa"},
	{Name: "Bengali", Code: "bn"},
}

// DefaultLanguageIndex is the 1-based prompt number of DefaultLanguage.
const DefaultLanguageIndex = 3

// ParseLanguage resolves a display name, code or "auto" case-insensitively.
// An empty string selects DefaultLanguage.
func ParseLanguage(s string) (transcribe.Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultLanguage
	}
	if strings.EqualFold(s, "auto") || strings.EqualFold(s, AutoDetect) {
		return transcribe.Auto(), nil
	}
	for _, opt := range Languages {
		if opt.Code == "" {
			continue
		}
		if strings.EqualFold(s, opt.Name) || strings.EqualFold(s, opt.Code) {
			return transcribe.Explicit(opt.Code), nil
		}
	}
	return transcribe.Language{}, fmt.Errorf("%w %q", ErrUnknownLanguage, s)
}

// LanguageName returns the display name for lang.
func LanguageName(lang transcribe.Language) string {
	if lang.AutoDetect {
		return AutoDetect
	}
	for _, opt := range Languages {
		if opt.Code == lang.Code && opt.Code != "" {
			return opt.Name
		}
	}
	return lang.Code
}
