// Package i18n translates user-facing messages of the quote service.
package i18n

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	shared     *Translator
	sharedOnce sync.Once

	// supported lists the locales with a message table; the first is the fallback.
	supported = []language.Tag{language.English, language.French}
	matcher   = language.NewMatcher(supported)
)

// messages maps a translation key to its text in one language.
type messages map[string]string

// Translator looks messages up per locale.
type Translator struct {
	tables map[string]messages
}

// NewTranslator returns a translator loaded with the built-in tables.
func NewTranslator() *Translator {
	return &Translator{tables: map[string]messages{"en": english, "fr": french}}
}

// GetTranslator returns the process-wide translator.
func GetTranslator() *Translator {
	sharedOnce.Do(func() { shared = NewTranslator() })
	return shared
}

// Translate returns the message for key in locale, then in DefaultLocale,
// and finally the key itself.
func (t *Translator) Translate(key, locale string) string {
	for _, l := range [...]string{locale, DefaultLocale} {
		if msg, ok := t.tables[l][key]; ok {
			return msg
		}
	}
	return key
}

// GetLocale picks the best supported locale from the Accept-Language header.
func GetLocale(c *gin.Context) string {
	header := c.GetHeader(AcceptLanguageHeader)
	if header == "" {
		return DefaultLocale
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}

	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

var english = messages{
	ErrKeyInvalidRequest:       "Invalid request",
	ErrKeyInvalidRequestBody:   "Invalid request body",
	ErrKeyInternalError:        "An unexpected error occurred",
	ErrKeyUnauthorized:         "Unauthorized",
	ErrKeyInvalidCredentials:   "Invalid username or password",
	ErrKeyAPIKeyRequired:       "API key is required",
	ErrKeyInvalidAPIKey:        "Invalid API key",
	ErrKeyForbidden:            "Forbidden",
	ErrKeyNotFound:             "Not found",
	ErrKeyRateLimitExceeded:    "Too many requests, please try again later",
	ErrKeyConflict:             "Conflict",
	ErrKeyInvalidToken:         "Invalid or expired token",
	ErrKeyTokenRequired:        "Authentication token is required",
	ErrKeyTimeout:              "The request took too long",
	ErrKeyInvalidTransportMode: "transport.mode: must be self or operator",
	ErrKeyInvalidPricingConfig: "The pricing configuration is not valid",
	ErrKeyServiceNotFound:      "Unknown service",
	ErrKeyPricingConflict:      "The pricing configuration was changed meanwhile, please retry",
	ErrKeyStorageUnavailable:   "Pricing storage is temporarily unavailable",
}

var french = messages{
	ErrKeyInvalidRequest:       "Requête invalide",
	ErrKeyInvalidRequestBody:   "Corps de requête invalide",
	ErrKeyInternalError:        "Une erreur inattendue est survenue",
	ErrKeyUnauthorized:         "Non autorisé",
	ErrKeyInvalidCredentials:   "Identifiant ou mot de passe incorrect",
	ErrKeyAPIKeyRequired:       "Une clé d'API est requise",
	ErrKeyInvalidAPIKey:        "Clé d'API invalide",
	ErrKeyForbidden:            "Accès refusé",
	ErrKeyNotFound:             "Introuvable",
	ErrKeyRateLimitExceeded:    "Trop de requêtes, veuillez réessayer plus tard",
	ErrKeyConflict:             "Conflit",
	ErrKeyInvalidToken:         "Jeton invalide ou expiré",
	ErrKeyTokenRequired:        "Un jeton d'authentification est requis",
	ErrKeyTimeout:              "La requête a pris trop de temps",
	ErrKeyInvalidTransportMode: "transport.mode : doit valoir self ou operator",
	ErrKeyInvalidPricingConfig: "La configuration tarifaire n'est pas valide",
	ErrKeyServiceNotFound:      "Prestation inconnue",
	ErrKeyPricingConflict:      "La configuration tarifaire a été modifiée entre-temps, veuillez réessayer",
	ErrKeyStorageUnavailable:   "Le stockage des tarifs est momentanément indisponible",
}
