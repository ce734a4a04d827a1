package credentials

import (
	"net/http"
	"time"
)

// CookieStore is the per-request store used by the gateway: reads come from
// the incoming request's cookies, writes become Set-Cookie headers on the
// response. Writes are visible to Get within the same request.
type CookieStore struct {
	r            *http.Request
	w            http.ResponseWriter
	parentDomain string
	slots        []string
	overlay      map[string]*string
}

// NewCookieStore binds a store to one request/response pair. parentDomain
// may be empty; when set, ClearAll also expires cookies scoped to it.
// slots name the cookies ClearAll covers; when omitted, KnownSlots.
func NewCookieStore(w http.ResponseWriter, r *http.Request, parentDomain string, slots ...string) *CookieStore {
	if len(slots) == 0 {
		slots = KnownSlots
	}
	return &CookieStore{
		r:            r,
		w:            w,
		parentDomain: parentDomain,
		slots:        slots,
		overlay:      make(map[string]*string),
	}
}

func (c *CookieStore) Get(name string) (string, bool) {
	if v, ok := c.overlay[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := c.r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStore) Set(name, value string, opts Options) {
	path := opts.Path
	if path == "" {
		path = "/"
	}
	sameSite := http.SameSiteDefaultMode
	if opts.SameSiteStrict {
		sameSite = http.SameSiteStrictMode
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   opts.Domain,
		MaxAge:   int(opts.MaxAge / time.Second),
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: sameSite,
	})
	c.overlay[name] = &value
}

// Clear removes the slot by writing an already-expired cookie.
func (c *CookieStore) Clear(name string) {
	c.expire(name, "")
	c.overlay[name] = nil
}

func (c *CookieStore) ClearAll() {
	for _, name := range c.slots {
		c.expire(name, "")
		if c.parentDomain != "" {
			c.expire(name, c.parentDomain)
		}
		c.overlay[name] = nil
	}
}

func (c *CookieStore) expire(name, domain string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
