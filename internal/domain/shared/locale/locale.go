package locale

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

var ErrUnsupportedLanguage = errors.New("locale: unsupported language")

// DefaultLanguage is used when a user never picked one.
const DefaultLanguage = "en"

// Language is a UI language the storefront can be switched to.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	RTL        bool   `json:"rtl"`
}

var languages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "am", Name: "Amharic", NativeName: "አማርኛ"},
	{Code: "or", Name: "Oromo", NativeName: "Afaan Oromoo"},
	{Code: "ti", Name: "Tigrinya", NativeName: "ትግርኛ"},
	{Code: "so", Name: "Somali", NativeName: "Soomaali"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", RTL: true},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو", RTL: true},
	{Code: "fa", Name: "Persian", NativeName: "فارسی", RTL: true},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "sw", Name: "Swahili", NativeName: "Kiswahili"},
	{Code: "ha", Name: "Hausa", NativeName: "Hausa"},
	{Code: "yo", Name: "Yoruba", NativeName: "Yorùbá"},
	{Code: "ig", Name: "Igbo", NativeName: "Igbo"},
	{Code: "zu", Name: "Zulu", NativeName: "isiZulu"},
	{Code: "af", Name: "Afrikaans", NativeName: "Afrikaans"},
	{Code: "th", Name: "Thai", NativeName: "ไทย"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu"},
	{Code: "tl", Name: "Filipino", NativeName: "Filipino"},
}

var (
	byCode  = map[string]Language{}
	tags    []language.Tag
	matcher language.Matcher
)

func init() {
	tags = make([]language.Tag, 0, len(languages))
	for _, l := range languages {
		byCode[l.Code] = l
		tags = append(tags, language.MustParse(l.Code))
	}
	matcher = language.NewMatcher(tags)
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage resolves a BCP 47 tag ("en-US", "am_ET") to a supported
// language code. Anything that only matches by fallback is rejected.
func ParseLanguage(raw string) (string, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return "", ErrUnsupportedLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", ErrUnsupportedLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", ErrUnsupportedLanguage
	}
	return languages[idx].Code, nil
}

// Lookup returns the language for an exact supported code.
func Lookup(code string) (Language, bool) {
	l, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
	return l, ok
}
