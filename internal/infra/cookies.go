package infra

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session cookies the location endpoint needs to identify the account.
var RequiredCookies = []string{"__Secure-1PSID", "__Secure-3PSID"}

// ErrMissingCookie is returned when a required session cookie is absent.
var ErrMissingCookie = errors.New("required cookie missing")

// httpOnlyPrefix marks HttpOnly cookies in curl/browser exports.
// Such lines look like comments but carry a cookie.
const httpOnlyPrefix = "#HttpOnly_"

// Cookie is one entry of a Netscape cookie file.
type Cookie struct {
	Domain            string
	IncludeSubdomains bool
	Path              string
	Secure            bool
	Expires           time.Time // Zero for session cookies
	Name              string
	Value             string
	HttpOnly          bool
}

// CookieLineError reports a malformed line in a cookie file.
type CookieLineError struct {
	Line   int
	Reason string
}

func (e *CookieLineError) Error() string {
	return fmt.Sprintf("cookies line %d: %s", e.Line, e.Reason)
}

// CookieJar is the parsed content of a cookie file, in file order.
type CookieJar struct {
	cookies []Cookie
}

// LoadCookiesFile reads a Netscape cookie file from disk.
func LoadCookiesFile(path string) (*CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	jar, err := ParseCookies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jar, nil
}

// ParseCookies parses Netscape cookie lines and checks the required session cookies.
func ParseCookies(r io.Reader) (*CookieJar, error) {
	jar := &CookieJar{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c, err := parseCookieLine(line)
		if err != nil {
			return nil, &CookieLineError{Line: lineNo, Reason: err.Error()}
		}
		c.HttpOnly = httpOnly
		jar.cookies = append(jar.cookies, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	for _, name := range RequiredCookies {
		if _, ok := jar.Get(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingCookie, name)
		}
	}
	return jar, nil
}

func parseCookieLine(line string) (Cookie, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return Cookie{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}

	expiry, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Cookie{}, fmt.Errorf("invalid expiry %q", fields[4])
	}

	c := Cookie{
		Domain:            fields[0],
		IncludeSubdomains: strings.EqualFold(fields[1], "TRUE"),
		Path:              fields[2],
		Secure:            strings.EqualFold(fields[3], "TRUE"),
		Name:              fields[5],
		Value:             fields[6],
	}
	if expiry > 0 {
		c.Expires = time.Unix(expiry, 0)
	}
	return c, nil
}

// Get returns the last cookie with the given name. Later lines win, as in a browser jar.
func (j *CookieJar) Get(name string) (Cookie, bool) {
	for i := len(j.cookies) - 1; i >= 0; i-- {
		if j.cookies[i].Name == name {
			return j.cookies[i], true
		}
	}
	return Cookie{}, false
}

// Len returns the number of cookies loaded.
func (j *CookieJar) Len() int {
	return len(j.cookies)
}

// Expired returns the names of cookies whose expiry is before now.
func (j *CookieJar) Expired(now time.Time) []string {
	var names []string
	for _, c := range j.cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			names = append(names, c.Name)
		}
	}
	return names
}

// AddTo attaches every cookie to req. Duplicated names are sent once, last one wins.
func (j *CookieJar) AddTo(req *http.Request) {
	seen := make(map[string]bool, len(j.cookies))
	for i := len(j.cookies) - 1; i >= 0; i-- {
		c := j.cookies[i]
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}
