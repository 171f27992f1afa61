// Package telegram verifies the init data a Telegram Mini App client attaches
// to its requests.
//
// See https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const webAppDataKey = "WebAppData"

// UserIdentity is the user object embedded in init data.
type UserIdentity struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name,omitempty"`
	Username        string `json:"username,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsPremium       bool   `json:"is_premium,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	AllowsWriteToPM bool   `json:"allows_write_to_pm,omitempty"`
}

// InitData holds verified claims.
type InitData struct {
	// Fields contains every signed field except hash.
	Fields map[string]string
	// User is nil when the user field is absent or is not valid JSON.
	// In the latter case RawUser still holds the original value.
	User     *UserIdentity
	RawUser  string
	AuthDate time.Time
}

// VerifyInitData checks the signature of a URL-encoded init data payload
// against botToken. It reports false for empty payloads, payloads without
// a hash and hash mismatches.
func VerifyInitData(payload, botToken string) (*InitData, bool) {
	if payload == "" {
		return nil, false
	}

	values, err := url.ParseQuery(payload)
	if err != nil {
		return nil, false
	}

	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}

	hash, ok := fields["hash"]
	if !ok || hash == "" {
		return nil, false
	}
	delete(fields, "hash")

	if !hmac.Equal([]byte(hash), []byte(Sign(fields, botToken))) {
		return nil, false
	}

	return parseClaims(fields), true
}

// Sign computes the hex-encoded hash Telegram would attach to fields.
func Sign(fields map[string]string, botToken string) string {
	return hex.EncodeToString(signature(fields, botToken))
}

// Encode returns fields as a signed init data payload.
func Encode(fields map[string]string, botToken string) string {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", Sign(fields, botToken))
	return values.Encode()
}

func signature(fields map[string]string, botToken string) []byte {
	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	h := hmac.New(sha256.New, secret.Sum(nil))
	h.Write([]byte(checkString(fields)))
	return h.Sum(nil)
}

func checkString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	return strings.Join(lines, "\n")
}

func parseClaims(fields map[string]string) *InitData {
	data := &InitData{Fields: fields}

	if raw, ok := fields["user"]; ok {
		data.RawUser = raw
		var user UserIdentity
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			data.User = &user
		}
	}

	if ts, err := strconv.ParseInt(fields["auth_date"], 10, 64); err == nil {
		data.AuthDate = time.Unix(ts, 0).UTC()
	}

	return data
}
