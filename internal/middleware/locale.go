package middleware

import (
	"mealmate/internal/i18n"

	"github.com/gin-gonic/gin"
)

const localeKey = "locale"

// Locale resolves Accept-Language to a supported catalog locale.
func Locale(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localeKey, tr.Match(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func GetLocale(c *gin.Context) string {
	return c.GetString(localeKey)
}
