package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	igBaseURL   = "https://www.instagram.com"
	igTimeout   = 30 * time.Second
	igUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// App id the instagram.com web client sends; the API rejects requests
	// without it.
	igAppID = "936619743392459"
)

// Instagram fetches profile timelines via the instagram.com web API.
// Credentials are optional: without them requests go out anonymously, which
// works for public profiles but hits rate limits sooner.
type Instagram struct {
	client      *http.Client
	baseURL     string
	username    string
	password    string
	sessionFile string
	log         *zap.Logger

	// loginDisabled skips the login flow entirely (set in CI, where a
	// checkpoint challenge would hang the run).
	loginDisabled bool

	session       *session
	sessionLoaded bool
}

// session is the persisted authentication state, reused across runs.
type session struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	CSRFToken string `json:"csrf_token"`
}

// NewInstagram creates an Instagram source. username/password may be empty
// for anonymous access. sessionFile stores the session between runs.
func NewInstagram(username, password, sessionFile string, log *zap.Logger) (*Instagram, error) {
	if strings.TrimSpace(sessionFile) == "" {
		return nil, errors.New("instagram: session file path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Instagram{
		client:        &http.Client{Timeout: igTimeout},
		baseURL:       igBaseURL,
		username:      username,
		password:      password,
		sessionFile:   sessionFile,
		log:           log,
		loginDisabled: os.Getenv("CI") != "",
	}, nil
}

// Fetch returns up to limit posts for the profile, newest first, stopping at
// the first post older than since.
func (ig *Instagram) Fetch(profile string, limit int, since time.Time) ([]Post, error) {
	if err := ig.ensureSession(); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/v1/users/web_profile_info/?username=%s", ig.baseURL, url.QueryEscape(profile))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("instagram: create request: %w", err)
	}
	ig.setHeaders(req)

	resp, err := ig.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram: fetch %s: %w", profile, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("instagram: %s: %w", profile, ErrProfileNotFound)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("instagram: %s: %w", profile, ErrRateLimited)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("instagram: %s: status %d: %w", profile, resp.StatusCode, ErrLoginRequired)
	default:
		return nil, fmt.Errorf("instagram: %s: status %d", profile, resp.StatusCode)
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("instagram: decode %s: %w", profile, err)
	}

	user := pr.Data.User
	if user == nil {
		return nil, fmt.Errorf("instagram: %s: %w", profile, ErrProfileNotFound)
	}
	if user.IsPrivate && !user.FollowedByViewer {
		return nil, fmt.Errorf("instagram: %s: %w", profile, ErrProfilePrivate)
	}

	var posts []Post
	for _, edge := range user.TimelineMedia.Edges {
		node := edge.Node
		takenAt := time.Unix(node.TakenAtTimestamp, 0).UTC()

		// Timeline order is newest first; everything past the cutoff is older.
		if takenAt.Before(since) {
			break
		}

		caption := ""
		if len(node.Caption.Edges) > 0 {
			caption = node.Caption.Edges[0].Node.Text
		}

		posts = append(posts, Post{
			Shortcode: node.Shortcode,
			Caption:   caption,
			TakenAt:   takenAt,
		})
		if len(posts) >= limit {
			break
		}
	}

	return posts, nil
}

func (ig *Instagram) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", igUserAgent)
	req.Header.Set("X-IG-App-ID", igAppID)
	if ig.session != nil {
		req.Header.Set("X-CSRFToken", ig.session.CSRFToken)
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: ig.session.SessionID})
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: ig.session.CSRFToken})
	}
}

// ensureSession loads the persisted session, or logs in once and persists it.
// Anonymous access is a warning, not an error.
func (ig *Instagram) ensureSession() error {
	if ig.sessionLoaded {
		return nil
	}
	ig.sessionLoaded = true

	if ig.username == "" || ig.password == "" {
		ig.log.Warn("instagram credentials are not set, fetching anonymously")
		return nil
	}

	if sess, err := loadSession(ig.sessionFile); err == nil && sess.Username == ig.username {
		ig.session = sess
		ig.log.Info("instagram session loaded from file", zap.String("path", ig.sessionFile))
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		ig.log.Warn("failed to load instagram session file", zap.Error(err))
	}

	if ig.loginDisabled {
		ig.log.Warn("running in CI, skipping instagram login and fetching anonymously")
		return nil
	}

	sess, err := ig.login()
	if err != nil {
		return err
	}
	ig.session = sess
	if err := saveSession(ig.sessionFile, sess); err != nil {
		ig.log.Warn("failed to persist instagram session", zap.Error(err))
	} else {
		ig.log.Info("logged in to instagram and saved session", zap.String("path", ig.sessionFile))
	}
	return nil
}

// login performs the web login flow and returns the resulting session. Any
// failure here is fatal to the run: without a working session no profile can
// be fetched reliably.
func (ig *Instagram) login() (*session, error) {
	// A GET on the base URL seeds the csrftoken cookie the login call needs.
	req, err := http.NewRequest(http.MethodGet, ig.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("instagram: create preflight request: %w", err)
	}
	req.Header.Set("User-Agent", igUserAgent)

	resp, err := ig.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram login: %v: %w", err, ErrLoginRequired)
	}
	csrf := cookieValue(resp.Cookies(), "csrftoken")
	_ = resp.Body.Close()

	form := url.Values{}
	form.Set("username", ig.username)
	form.Set("enc_password", fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), ig.password))

	req, err = http.NewRequest(http.MethodPost, ig.baseURL+"/api/v1/web/accounts/login/ajax/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("instagram: create login request: %w", err)
	}
	req.Header.Set("User-Agent", igUserAgent)
	req.Header.Set("X-IG-App-ID", igAppID)
	req.Header.Set("X-CSRFToken", csrf)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err = ig.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram login: %v: %w", err, ErrLoginRequired)
	}
	defer func() { _ = resp.Body.Close() }()

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("instagram login: decode response: %w", ErrLoginRequired)
	}
	if lr.TwoFactorRequired {
		return nil, fmt.Errorf("instagram login: two-factor auth required, create a session manually: %w", ErrLoginRequired)
	}
	if !lr.Authenticated {
		return nil, fmt.Errorf("instagram login: bad credentials: %w", ErrLoginRequired)
	}

	sessionID := cookieValue(resp.Cookies(), "sessionid")
	if newCSRF := cookieValue(resp.Cookies(), "csrftoken"); newCSRF != "" {
		csrf = newCSRF
	}
	if sessionID == "" {
		return nil, fmt.Errorf("instagram login: no session cookie in response: %w", ErrLoginRequired)
	}

	return &session{Username: ig.username, SessionID: sessionID, CSRFToken: csrf}, nil
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if sess.SessionID == "" {
		return nil, errors.New("session file has no session id")
	}
	return &sess, nil
}

func saveSession(path string, sess *session) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

type profileResponse struct {
	Data struct {
		User *profileUser `json:"user"`
	} `json:"data"`
}

type profileUser struct {
	IsPrivate        bool `json:"is_private"`
	FollowedByViewer bool `json:"followed_by_viewer"`
	TimelineMedia    struct {
		Edges []struct {
			Node struct {
				Shortcode        string `json:"shortcode"`
				TakenAtTimestamp int64  `json:"taken_at_timestamp"`
				Caption          struct {
					Edges []struct {
						Node struct {
							Text string `json:"text"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"edge_media_to_caption"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_owner_to_timeline_media"`
}

type loginResponse struct {
	Authenticated     bool   `json:"authenticated"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	Status            string `json:"status"`
}
