package xuiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/config"
	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/models"
)

type panelFixture struct {
	server      *httptest.Server
	loginCalls  int
	failGetOnce bool
	lastAddBody map[string]interface{}
}

func newPanelFixture(t *testing.T) *panelFixture {
	t.Helper()
	f := &panelFixture{}

	mux := http.NewServeMux()

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls++
		http.SetCookie(w, &http.Cookie{Name: "3x-ui", Value: "session-token"})
		writeEnvelope(w, true, "", nil)
	})

	mux.HandleFunc("/xui/API/inbounds/getClientTraffics/", func(w http.ResponseWriter, r *http.Request) {
		if f.failGetOnce {
			f.failGetOnce = false
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		email := strings.TrimPrefix(r.URL.Path, "/xui/API/inbounds/getClientTraffics/")
		if email != "42" {
			writeEnvelope(w, true, "", nil)
			return
		}

		writeEnvelope(w, true, "", map[string]interface{}{
			"email":      "42",
			"up":         1073741824,
			"down":       2147483648,
			"total":      10737418240,
			"expiryTime": 1700000000000,
			"inboundId":  7,
		})
	})

	mux.HandleFunc("/xui/API/inbounds/addClient", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &f.lastAddBody)
		writeEnvelope(w, true, "", nil)
	})

	mux.HandleFunc("/xui/API/inbounds/7/resetClientTraffic/42", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, true, "", nil)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeEnvelope(w http.ResponseWriter, success bool, msg string, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"msg":     msg,
		"obj":     obj,
	})
}

func newTestClient(url string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewClient(config.PanelConfig{
		APIURL:   url,
		Username: "admin",
		Password: "secret",
	}, logger)
}

func TestLoginCachesSession(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("second Login returned error: %v", err)
	}

	if fixture.loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1 (session should be cached)", fixture.loginCalls)
	}
}

func TestGetClientByEmail(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	got, err := client.GetClientByEmail(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetClientByEmail returned error: %v", err)
	}

	want := models.RemoteClient{
		Email:      "42",
		Up:         1073741824,
		Down:       2147483648,
		Total:      10737418240,
		ExpiryTime: 1700000000000,
		InboundID:  7,
	}
	if *got != want {
		t.Errorf("GetClientByEmail = %+v, want %+v", *got, want)
	}
}

func TestGetClientByEmailNotFound(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	_, err := client.GetClientByEmail(context.Background(), "999")
	if !errs.IsClientNotFound(err) {
		t.Errorf("got %v, want ErrClientNotFound", err)
	}
}

func TestGetClientByEmailReloginOnUnauthorized(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	// Prime the session, then have the panel reject it once
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	fixture.failGetOnce = true

	got, err := client.GetClientByEmail(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetClientByEmail returned error: %v", err)
	}
	if got.Email != "42" {
		t.Errorf("Email = %q, want %q", got.Email, "42")
	}
	if fixture.loginCalls != 2 {
		t.Errorf("loginCalls = %d, want 2 (relogin after 401)", fixture.loginCalls)
	}
}

func TestAddClientSettingsEnvelope(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	remote := models.RemoteClient{
		Email:      "42",
		Enable:     true,
		ID:         "11111111-2222-3333-4444-555555555555",
		SubID:      "11111111-2222-3333-4444-555555555555",
		Flow:       "xtls-rprx-vision",
		LimitIP:    3,
		TotalGB:    10737418240,
		ExpiryTime: 1700000000000,
	}

	if err := client.AddClient(context.Background(), 7, remote); err != nil {
		t.Fatalf("AddClient returned error: %v", err)
	}

	if got := fixture.lastAddBody["id"]; got != float64(7) {
		t.Errorf("inbound id = %v, want 7", got)
	}

	// The settings field is a JSON string, not a nested object
	settingsStr, ok := fixture.lastAddBody["settings"].(string)
	if !ok {
		t.Fatalf("settings is %T, want string", fixture.lastAddBody["settings"])
	}

	var settings struct {
		Clients []map[string]interface{} `json:"clients"`
	}
	if err := json.Unmarshal([]byte(settingsStr), &settings); err != nil {
		t.Fatalf("failed to parse settings string: %v", err)
	}
	if len(settings.Clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(settings.Clients))
	}

	c := settings.Clients[0]
	if c["email"] != "42" {
		t.Errorf("email = %v, want 42", c["email"])
	}
	if c["totalGB"] != float64(10737418240) {
		t.Errorf("totalGB = %v, want 10737418240", c["totalGB"])
	}
	if c["flow"] != "xtls-rprx-vision" {
		t.Errorf("flow = %v, want xtls-rprx-vision", c["flow"])
	}
	if c["subId"] != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("subId = %v", c["subId"])
	}
}

func TestResetClientTraffic(t *testing.T) {
	fixture := newPanelFixture(t)
	client := newTestClient(fixture.server.URL)

	if err := client.ResetClientTraffic(context.Background(), 7, "42"); err != nil {
		t.Fatalf("ResetClientTraffic returned error: %v", err)
	}
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, false, "invalid credentials", nil)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Login(context.Background())
	if err == nil {
		t.Fatal("expected login error")
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("error %q does not carry the panel message", err)
	}
}

