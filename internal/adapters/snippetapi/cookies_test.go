package snippetapi

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestCookieJar_Seed(t *testing.T) {
	j := newCookieJar(" csrftoken=abc ; sessionid=s1;broken; =x")

	if got := j.get("csrftoken"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := j.get("sessionid"); got != "s1" {
		t.Errorf("expected s1, got %q", got)
	}
	if len(j.cookies) != 2 {
		t.Errorf("expected 2 cookies, got %d", len(j.cookies))
	}
}

func TestCookieJar_UpdateFromResponse(t *testing.T) {
	j := newCookieJar("csrftoken=old; sessionid=s1")

	var resp fasthttp.Response
	resp.Header.Add("Set-Cookie", "csrftoken=new; Path=/; SameSite=Lax")
	resp.Header.Add("Set-Cookie", "sessionid=; expires=Thu, 01 Jan 1970 00:00:00 GMT; Max-Age=0; Path=/")
	j.update(&resp)

	if got := j.get("csrftoken"); got != "new" {
		t.Errorf("expected new token, got %q", got)
	}
	if _, ok := j.cookies["sessionid"]; ok {
		t.Error("expected expired cookie dropped")
	}

	var req fasthttp.Request
	j.apply(&req)
	if got := string(req.Header.Cookie("csrftoken")); got != "new" {
		t.Errorf("expected cookie sent, got %q", got)
	}
}
