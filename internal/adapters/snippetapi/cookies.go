package snippetapi

import (
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// cookieJar keeps the session cookies sent back on every request.
type cookieJar struct {
	mu      sync.Mutex
	cookies map[string]string
}

// newCookieJar seeds a jar from a "name=value; name2=value2" header value.
func newCookieJar(seed string) *cookieJar {
	j := &cookieJar{cookies: make(map[string]string)}
	for _, part := range strings.Split(seed, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		j.cookies[name] = value
	}
	return j
}

func (j *cookieJar) get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cookies[name]
}

// apply writes every cookie onto req.
func (j *cookieJar) apply(req *fasthttp.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for k, v := range j.cookies {
		req.Header.SetCookie(k, v)
	}
}

// update stores the cookies set by resp. Expired cookies are dropped.
func (j *cookieJar) update(resp *fasthttp.Response) {
	j.mu.Lock()
	defer j.mu.Unlock()
	resp.Header.VisitAllCookie(func(_, value []byte) {
		var c fasthttp.Cookie
		if err := c.ParseBytes(value); err != nil {
			return
		}
		name := string(c.Key())
		if exp := c.Expire(); string(c.Value()) == "" || (exp != fasthttp.CookieExpireUnlimited && exp.Before(time.Now())) {
			delete(j.cookies, name)
			return
		}
		j.cookies[name] = string(c.Value())
	})
}
