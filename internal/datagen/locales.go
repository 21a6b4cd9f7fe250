package datagen

import "fmt"

// SupportedLocales is the fixed allow-list of locale identifiers accepted by
// the generator. Any other identifier is rejected before generation begins.
var SupportedLocales = []string{
	"uk_UA", "en_US", "ru_RU", "de_DE", "fr_FR",
	"es_ES", "ja_JP", "zh_CN", "pt_BR", "it_IT",
	"pl_PL", "nl_NL", "ko_KR", "tr_TR", "ar_SA",
}

// IsSupportedLocale reports whether locale is on the allow-list.
func IsSupportedLocale(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

type UnsupportedLocaleError struct {
	Locale string
}

func (e *UnsupportedLocaleError) Error() string {
	return fmt.Sprintf("unsupported locale %q, supported: %v", e.Locale, SupportedLocales)
}
