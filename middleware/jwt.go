package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"livro/config"
)

// ContextAdminEmail is the gin context key holding the signed-in admin.
const ContextAdminEmail = "adminEmail"

// AdminClaims is the payload of the admin session cookie.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminEmailAllowed reports whether email belongs to the staff domain.
func AdminEmailAllowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	domain := "@" + strings.ToLower(config.AppConfig.AdminEmailDomain)
	return len(email) > len(domain) && strings.HasSuffix(email, domain)
}

// IssueAdminToken signs a session token for email.
func IssueAdminToken(email string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email: strings.ToLower(strings.TrimSpace(email)),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "livro",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SessionSecret))
}

// ParseAdminToken verifies a session token and returns its claims.
func ParseAdminToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid session token")
}

// SetSessionCookie stores token in the admin cookie.
func SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.AdminCookieName, token, int(sessionTTL().Seconds()), "/", "", config.AppConfig.Mode == "release", true)
}

// ClearSessionCookie expires the admin cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AppConfig.AdminCookieName, "", -1, "/", "", config.AppConfig.Mode == "release", true)
}

// AdminGate rejects every /admin request without a valid session cookie,
// except the login endpoint.
func AdminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(c.Request.URL.Path) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(config.AppConfig.AdminCookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"sucesso": false, "erro": "Não autenticado"})
			return
		}
		claims, err := ParseAdminToken(cookie)
		if err != nil || !AdminEmailAllowed(claims.Email) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"sucesso": false, "erro": "Sessão inválida"})
			return
		}

		c.Set(ContextAdminEmail, claims.Email)
		c.Next()
	}
}

// skipAuth is true outside /admin and for the login endpoint.
func skipAuth(path string) bool {
	if path != "/admin" && !strings.HasPrefix(path, "/admin/") {
		return true
	}
	return path == "/admin/login"
}

func sessionTTL() time.Duration {
	hours := config.AppConfig.SessionTTLHours
	if hours <= 0 {
		hours = 24 * 7
	}
	return time.Duration(hours) * time.Hour
}
