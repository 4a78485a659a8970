package xamlai

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Language is a target language offered to users.
type Language struct {
	Name string // Human-readable name used in prompts and the UI
	Code string // BCP 47 code for non-LLM backends and text direction
}

// Direction returns "rtl" for right-to-left languages, "ltr" otherwise.
func (l Language) Direction() string {
	return GetDirection(l.Code)
}

// DefaultSourceLang is the language source texts are written in.
const DefaultSourceLang = "English"

// Languages is the fixed list of selectable target languages.
var Languages = []Language{
	{"Afrikaans", "af"}, {"Albanian", "sq"}, {"Amharic", "am"}, {"Arabic", "ar"},
	{"Assamese", "as"}, {"Azerbaijani", "az"}, {"Bangla", "bn"}, {"Basque", "eu"},
	{"Bokmål", "nb"}, {"Bosnian", "bs"}, {"Bulgarian", "bg"}, {"Catalan", "ca"},
	{"Chinese", "zh"}, {"Croatian", "hr"}, {"Czech", "cs"}, {"Danish", "da"},
	{"Dutch", "nl"}, {"English", "en"}, {"Estonian", "et"}, {"Farsi", "fa"},
	{"Filipino", "fil"}, {"Finnish", "fi"}, {"French", "fr"}, {"Gaelic", "gd"},
	{"Galician", "gl"}, {"Georgian", "ka"}, {"German", "de"}, {"Greek", "el"},
	{"Gujarati", "gu"}, {"Hebrew", "he"}, {"Hindi", "hi"}, {"Hungarian", "hu"},
	{"Icelandic", "is"}, {"Indonesian", "id"}, {"Irish", "ga"}, {"Italian", "it"},
	{"Japanese", "ja"}, {"Kannada", "kn"}, {"Kazakh", "kk"}, {"Khmer", "km"},
	{"Konkhani", "gom"}, {"Korean", "ko"}, {"Lao", "lo"}, {"Latvian", "lv"},
	{"Lithuanian", "lt"}, {"Luxembourg", "lb"}, {"Macedonian", "mk"}, {"Malay", "ms"},
	{"Malayalam", "ml"}, {"Maltese", "mt"}, {"Maori", "mi"}, {"Marathi", "mr"},
	{"Nepal", "ne"}, {"Nynorsk", "nn"}, {"Oriya", "or"}, {"Polish", "pl"},
	{"Portuguese", "pt"}, {"Punjabi", "pa"}, {"Quechua", "qu"}, {"Romanian", "ro"},
	{"Russian", "ru"}, {"Serbian", "sr"}, {"Slovak", "sk"}, {"Slovenian", "sl"},
	{"Spanish", "es"}, {"Swedish", "sv"}, {"Tamil", "ta"}, {"Telugu", "te"},
	{"Thai", "th"}, {"Turkish", "tr"}, {"Turkmen", "tk"}, {"Ukrainian", "uk"},
	{"Urdu", "ur"}, {"Uyghur", "ug"}, {"Vietnamese", "vi"}, {"Welsh", "cy"},
}

// LanguageNames returns the names of all selectable languages, in list order.
func LanguageNames() []string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = l.Name
	}
	return names
}

// LookupLanguage finds a language by name (case-insensitive) or by code
// ("fr", "pt-BR", "zh_TW").
func LookupLanguage(nameOrCode string) (Language, bool) {
	s := strings.TrimSpace(nameOrCode)
	if s == "" {
		return Language{}, false
	}

	fold := cases.Fold()
	folded := fold.String(s)
	for _, l := range Languages {
		if fold.String(l.Name) == folded {
			return l, true
		}
	}

	tag, err := language.Parse(NormalizeLocale(s))
	if err != nil {
		return Language{}, false
	}
	base, _ := tag.Base()
	for _, l := range Languages {
		if codeBase(l.Code) == base.String() {
			return l, true
		}
	}
	return Language{}, false
}

// codeBase parses a code the same way user input is parsed, so that
// canonicalization applies to both sides of the comparison.
func codeBase(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	return base.String()
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	// Extract base language code (e.g., "ar" from "ar-SA")
	base := strings.Split(NormalizeLocale(langCode), "-")[0]
	base = strings.ToLower(base)

	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a locale code to BCP 47 form (e.g., "es_ES" → "es-ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
