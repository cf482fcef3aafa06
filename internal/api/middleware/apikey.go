package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/api/response"
)

// timeTokenLifetime bounds how long a generated time token stays valid.
const timeTokenLifetime = 5 * time.Minute

// APIKeyMiddleware guards mutating endpoints with a shared internal API
// key. Callers must send the key in X-API-Key plus a fresh time token in
// X-Time-Token, so a captured request cannot be replayed indefinitely.
// The key is read from the INTERNAL_API_KEY environment variable on each
// request.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("INTERNAL_API_KEY")
		if expectedKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "internal error", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if !hmac.Equal([]byte(apiKey), []byte(expectedKey)) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !validateTimeToken(timeToken, expectedKey) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken creates a time token for the given API key: the current
// unix timestamp signed with an HMAC keyed on the API key.
func GenerateTimeToken(apiKey string) string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return fmt.Sprintf("%s.%s", timestamp, signTimestamp(timestamp, apiKey))
}

func validateTimeToken(token, apiKey string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}

	timestamp, signature := parts[0], parts[1]
	issued, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := time.Since(time.Unix(issued, 0))
	if age < -timeTokenLifetime || age > timeTokenLifetime {
		return false
	}

	expected := signTimestamp(timestamp, apiKey)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func signTimestamp(timestamp, apiKey string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}
