// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const langKey = "lang"

// I18nMiddleware picks the page language from Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(langKey, parseLang(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

func parseLang(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	// Handle cases like "ko-KR,ko;q=0.9,en;q=0.8"
	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch strings.ToLower(first) {
	case "ko", "ko-kr", "ko_kr":
		return "ko"
	case "en", "en-us", "en-gb":
		return "en"
	default:
		return defaultLang
	}
}

// Lang returns the language chosen by I18nMiddleware.
func Lang(c *gin.Context) string {
	return c.GetString(langKey)
}
