package translate

import "strings"

// Auto lets the upstream detect the source language.
const Auto = "auto"

// Supported is the fixed set of language codes shared by translation and the
// "/xx text" command prefix.
var Supported = []string{"cs", "fr", "en", "es", "de", "it", "pl", "ru", "sk"}

var supported = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Supported))
	for _, l := range Supported {
		m[l] = struct{}{}
	}
	return m
}()

func IsSupported(lang string) bool {
	_, ok := supported[lang]
	return ok
}

// ParseCommand recognizes a "/xx text" prefix where xx is a supported code of
// two or three letters. It returns the code and the text after the space.
func ParseCommand(content string) (lang, rest string, ok bool) {
	if len(content) < 4 || content[0] != '/' {
		return "", "", false
	}
	sp := strings.IndexByte(content, ' ')
	if sp < 3 || sp > 4 {
		return "", "", false
	}
	lang = content[1:sp]
	if !IsSupported(lang) {
		return "", "", false
	}
	return lang, content[sp+1:], true
}
