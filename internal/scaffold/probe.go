package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apivengers/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

const (
	probeTimeout   = 10 * time.Second
	probeTokenTTL  = 24 * time.Hour
	probeSampleID  = "123"
	maxProbeBody   = 1 << 20
	probeUserID    = "000000000000000000000123"
	probeUserEmail = "probe@apivengers.local"
)

// DefaultProbeHosts are the hosts a Prober may reach until AllowHosts says
// otherwise.
var DefaultProbeHosts = []string{"localhost", "127.0.0.1", "::1"}

// ErrProbeTarget is returned for a base URL the prober may not reach.
var ErrProbeTarget = errors.New("probe target not allowed")

// ProbeClaims mirrors the payload the generated auth code signs.
type ProbeClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ProbeResult is the outcome of one probe request.
type ProbeResult struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	URL    string          `json:"url"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
	Text   string          `json:"text,omitempty"`
}

// Prober issues sample requests against a running generated API.
type Prober struct {
	HTTP   *http.Client
	Secret []byte
	now    func() time.Time
	hosts  map[string]bool
}

// NewProber returns a prober that signs tokens with secret.
func NewProber(secret string) *Prober {
	if secret == "" {
		secret = DefaultJWTSecret
	}
	p := &Prober{
		Secret: []byte(secret),
		now:    time.Now,
	}
	p.HTTP = &http.Client{
		Timeout: probeTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return p.CheckTarget(req.URL.String())
		},
	}
	p.AllowHosts(DefaultProbeHosts...)
	return p
}

// AllowHosts replaces the hosts the prober may reach. "*" allows any host.
func (p *Prober) AllowHosts(hosts ...string) {
	p.hosts = make(map[string]bool, len(hosts))
	for _, h := range hosts {
		p.hosts[strings.ToLower(strings.Trim(h, "[]"))] = true
	}
}

// CheckTarget rejects anything but an http(s) URL on an allowed host.
func (p *Prober) CheckTarget(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrProbeTarget, baseURL)
	}
	host := strings.ToLower(u.Hostname())
	if p.hosts["*"] || p.hosts[host] {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && p.hosts[ip.String()] {
		return nil
	}
	return fmt.Errorf("%w: host %q", ErrProbeTarget, host)
}

// ProbePath substitutes the sample id for the :id parameter.
func ProbePath(path string) string {
	return strings.Replace(path, ":id", probeSampleID, 1)
}

// Token mints a bearer token for role.
func (p *Prober) Token(role string) (string, error) {
	if role == "" || role == RoleAny {
		role = RoleUser
	}
	now := p.now()
	claims := &ProbeClaims{
		UserID: probeUserID,
		Email:  probeUserEmail,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(probeTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Secret)
}

// Probe sends e's request to baseURL. Any HTTP response, whatever its
// status, is a result; only transport failures are errors.
func (p *Prober) Probe(ctx context.Context, baseURL string, e store.Endpoint) (*ProbeResult, error) {
	if err := p.CheckTarget(baseURL); err != nil {
		return nil, err
	}
	path := ProbePath(e.Path)
	target := strings.TrimRight(baseURL, "/") + path
	method := strings.ToUpper(e.Method)

	var body io.Reader
	if method == http.MethodPost || method == http.MethodPut {
		data, _ := json.Marshal(map[string]string{
			"name":        "Test Item",
			"description": "This is a test item",
		})
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.AuthRequired {
		token, err := p.Token(e.Role)
		if err != nil {
			return nil, fmt.Errorf("sign probe token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, fmt.Errorf("read probe response: %w", err)
	}

	res := &ProbeResult{Method: method, Path: path, URL: target, Status: resp.StatusCode}
	if json.Valid(data) {
		res.Body = data
	} else {
		res.Text = string(data)
	}
	return res, nil
}
