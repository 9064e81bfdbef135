package transcribe

// Language selects how the engine treats the spoken language. Exactly one of
// Code and AutoDetect is set on a valid value.
type Language struct {
	// Code is an ISO 639-1 code such as "hi" or "kn".
	Code string
	// AutoDetect lets the engine determine the language itself.
	AutoDetect bool
}

// Explicit returns a Language constrained to code.
func Explicit(code string) Language {
	return Language{Code: code}
}

// Auto returns the auto-detect Language.
func Auto() Language {
	return Language{AutoDetect: true}
}

// Validate reports whether exactly one mode is active.
func (l Language) Validate() error {
	switch {
	case l.AutoDetect && l.Code != "":
		return ErrConflictingLanguage
	case !l.AutoDetect && l.Code == "":
		return ErrNoLanguage
	}
	return nil
}

func (l Language) String() string {
	if l.AutoDetect {
		return "auto"
	}
	return l.Code
}
