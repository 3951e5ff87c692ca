package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ppetrovv/bisera/internal/cart"
)

const cartCookieName = "bisera_cart"

// cookieCart backs the guest cart with an HMAC-signed cookie. A tampered or
// unreadable cookie is treated as an empty cart, not an error.
type cookieCart struct {
	w      http.ResponseWriter
	r      *http.Request
	secret []byte

	// Store may be called more than once per request; only the last write
	// matters, and Load must see it.
	pending  []cart.Line
	hasWrite bool
}

func newCookieCart(w http.ResponseWriter, r *http.Request, secret []byte) *cookieCart {
	return &cookieCart{w: w, r: r, secret: secret}
}

func (c *cookieCart) Load() []cart.Line {
	if c.hasWrite {
		return c.pending
	}
	ck, err := c.r.Cookie(cartCookieName)
	if err != nil {
		return nil
	}
	payload, ok := c.verify(ck.Value)
	if !ok {
		return nil
	}
	var lines []cart.Line
	if err := json.Unmarshal(payload, &lines); err != nil {
		log.Warn().Err(err).Msg("cart: dropping unreadable cookie")
		return nil
	}
	return lines
}

func (c *cookieCart) Store(lines []cart.Line) {
	c.pending = lines
	c.hasWrite = true

	payload, err := json.Marshal(lines)
	if err != nil {
		log.Error().Err(err).Msg("cart: cookie marshal failed")
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     cartCookieName,
		Value:    c.sign(payload),
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieCart) sign(payload []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *cookieCart) verify(value string) ([]byte, bool) {
	body, sig, found := strings.Cut(value, ".")
	if !found {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, false
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, false
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return nil, false
	}
	return payload, true
}
