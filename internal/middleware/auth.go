package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
)

const (
	// APIKeyHeader carries the API key.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is accepted when the header cannot be set, e.g. from a
	// plain link on the quote form.
	APIKeyQuery = "api_key"
	// ClientKey holds the name of the API client that made the request.
	ClientKey = "api_client"
)

type apiClient struct {
	name   string
	secret []byte
}

// parseAPIKeys reads "name:secret" entries. A bare secret is named after its
// position ("client-1", "client-2", ...). Blank entries are skipped.
func parseAPIKeys(keys []string) []apiClient {
	clients := make([]apiClient, 0, len(keys))
	for i, k := range keys {
		name, secret, found := strings.Cut(k, ":")
		if !found {
			name, secret = "client-"+strconv.Itoa(i+1), k
		}
		if secret == "" {
			continue
		}
		clients = append(clients, apiClient{name: name, secret: []byte(secret)})
	}
	return clients
}

// APIKeyAuth protects the quoting endpoints with static API keys. The name
// of the matching client is stored under ClientKey. With no keys configured
// every request passes.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	clients := parseAPIKeys(keys)

	return func(c *gin.Context) {
		if len(clients) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}
		if key == "" {
			rejectAPIKey(c, i18n.ErrKeyAPIKeyRequired)
			return
		}

		name, ok := lookupClient(clients, []byte(key))
		if !ok {
			rejectAPIKey(c, i18n.ErrKeyInvalidAPIKey)
			return
		}
		c.Set(ClientKey, name)
		c.Next()
	}
}

// lookupClient compares key against every secret so the time taken does not
// depend on which one matched.
func lookupClient(clients []apiClient, key []byte) (string, bool) {
	match := -1
	for i, cl := range clients {
		if subtle.ConstantTimeCompare(cl.secret, key) == 1 && match < 0 {
			match = i
		}
	}
	if match < 0 {
		return "", false
	}
	return clients[match].name, true
}

// GetClient returns the API client name set by APIKeyAuth.
func GetClient(c *gin.Context) string {
	return c.GetString(ClientKey)
}

func rejectAPIKey(c *gin.Context, messageKey string) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewError(dto.ErrCodeUnauthorized, message).WithRequestID(GetRequestID(c)))
}
