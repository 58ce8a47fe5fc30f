package xuiclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/constants"
	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/models"
)

// Client is a 3X-UI panel API client
type Client struct {
	httpClient  *resty.Client
	panelConfig config.PanelConfig
	cookieCache *cache.Cache
	logger      *logrus.Logger
}

// apiResponse represents the envelope the panel wraps every reply in
type apiResponse struct {
	Success bool        `json:"success"`
	Msg     string      `json:"msg"`
	Obj     interface{} `json:"obj"`
}

// NewClient creates a new 3X-UI panel API client
func NewClient(panelConfig config.PanelConfig, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(constants.DefaultTimeout * time.Second).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime * time.Second).
		SetRetryMaxWaitTime(constants.DefaultRetryMaxWaitTime * time.Second).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

	return &Client{
		httpClient:  httpClient,
		panelConfig: panelConfig,
		cookieCache: cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger:      logger,
	}
}

// Login logs in to the panel API
func (c *Client) Login(ctx context.Context) error {
	// Check if we already have a valid session
	if _, found := c.cookieCache.Get("session"); found {
		return nil
	}

	c.logger.Infof("Logging in to panel API at %s", c.panelConfig.APIURL)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"username": c.panelConfig.Username,
			"password": c.panelConfig.Password,
		}).
		Post(fmt.Sprintf("%s/login", c.panelConfig.APIURL))

	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("Login failed - URL: %s/login, Status: %d, Response: %s",
			c.panelConfig.APIURL, resp.StatusCode(), string(resp.Body()))
		return &errs.PanelAPIError{Operation: "login", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if !apiResp.Success {
		return &errs.PanelAPIError{Operation: "login", Status: resp.StatusCode(), Message: apiResp.Msg}
	}

	// Store cookies for future requests
	cookies := resp.Cookies()
	if len(cookies) > 0 {
		c.cookieCache.Set("session", cookies, cache.DefaultExpiration)
		c.logger.Info("Successfully logged in to panel API")
		return nil
	}

	return &errs.PanelAPIError{Operation: "login", Status: resp.StatusCode(), Message: "no session cookie received from server"}
}

// GetClientByEmail gets a client's traffic record by its email (the
// stringified Telegram id). Returns errors.ErrClientNotFound when the panel
// has no client for the email; any other failure is a transport error.
func (c *Client) GetClientByEmail(ctx context.Context, email string) (*models.RemoteClient, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	cookies, _ := c.cookieCache.Get("session")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetCookies(cookies.([]*http.Cookie)).
		Get(fmt.Sprintf("%s/xui/API/inbounds/getClientTraffics/%s", c.panelConfig.APIURL, email))

	if err != nil {
		return nil, fmt.Errorf("get client request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.cookieCache.Delete("session")
			return c.GetClientByEmail(ctx, email)
		}
		return nil, &errs.PanelAPIError{Operation: "get client", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse get client response: %w", err)
	}

	if !apiResp.Success {
		return nil, &errs.PanelAPIError{Operation: "get client", Status: resp.StatusCode(), Message: apiResp.Msg}
	}

	// The panel reports an unknown email as a successful reply with a null obj
	if apiResp.Obj == nil {
		return nil, errs.ErrClientNotFound
	}

	objJSON, err := json.Marshal(apiResp.Obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client obj: %w", err)
	}

	var client models.RemoteClient
	if err := json.Unmarshal(objJSON, &client); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client: %w", err)
	}

	return &client, nil
}

// AddClient adds a client to an inbound
func (c *Client) AddClient(ctx context.Context, inboundID int, client models.RemoteClient) error {
	if err := c.Login(ctx); err != nil {
		return err
	}

	cookies, _ := c.cookieCache.Get("session")

	requestBody, err := c.buildSettingsBody(inboundID, client)
	if err != nil {
		return err
	}

	c.logger.Infof("Adding client to inbound %d with email: %s", inboundID, client.Email)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetCookies(cookies.([]*http.Cookie)).
		SetBody(requestBody).
		Post(fmt.Sprintf("%s/xui/API/inbounds/addClient", c.panelConfig.APIURL))

	if err != nil {
		return fmt.Errorf("add client request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.cookieCache.Delete("session")
			return c.AddClient(ctx, inboundID, client)
		}
		c.logger.Errorf("Add client failed with status code %d, response body: %s", resp.StatusCode(), string(resp.Body()))
		return &errs.PanelAPIError{Operation: "add client", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	if err := c.checkEnvelope("add client", resp.Body()); err != nil {
		return err
	}

	c.logger.Infof("Successfully added client %s to inbound %d", client.Email, inboundID)
	return nil
}

// UpdateClient updates an existing client identified by its panel UUID
func (c *Client) UpdateClient(ctx context.Context, clientID string, inboundID int, client models.RemoteClient) error {
	if err := c.Login(ctx); err != nil {
		return err
	}

	cookies, _ := c.cookieCache.Get("session")

	requestBody, err := c.buildSettingsBody(inboundID, client)
	if err != nil {
		return err
	}

	c.logger.Infof("Updating client %s on inbound %d", clientID, inboundID)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetCookies(cookies.([]*http.Cookie)).
		SetBody(requestBody).
		Post(fmt.Sprintf("%s/xui/API/inbounds/updateClient/%s", c.panelConfig.APIURL, clientID))

	if err != nil {
		return fmt.Errorf("update client request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.cookieCache.Delete("session")
			return c.UpdateClient(ctx, clientID, inboundID, client)
		}
		c.logger.Errorf("Update client failed with status code %d, response body: %s", resp.StatusCode(), string(resp.Body()))
		return &errs.PanelAPIError{Operation: "update client", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	return c.checkEnvelope("update client", resp.Body())
}

// ResetClientTraffic resets a client's usage counters
func (c *Client) ResetClientTraffic(ctx context.Context, inboundID int, email string) error {
	if err := c.Login(ctx); err != nil {
		return err
	}

	cookies, _ := c.cookieCache.Get("session")

	c.logger.Debugf("Resetting traffic for client %s in inbound %d", email, inboundID)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetCookies(cookies.([]*http.Cookie)).
		Post(fmt.Sprintf("%s/xui/API/inbounds/%d/resetClientTraffic/%s", c.panelConfig.APIURL, inboundID, email))

	if err != nil {
		return fmt.Errorf("reset client traffic request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.cookieCache.Delete("session")
			return c.ResetClientTraffic(ctx, inboundID, email)
		}
		return &errs.PanelAPIError{Operation: "reset traffic", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	return c.checkEnvelope("reset traffic", resp.Body())
}

// buildSettingsBody wraps a client in the panel's settings envelope. The
// panel expects the settings field as a JSON string, not a nested object.
func (c *Client) buildSettingsBody(inboundID int, client models.RemoteClient) (map[string]interface{}, error) {
	settings := map[string]interface{}{
		"clients": []map[string]interface{}{client.ToSettings()},
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		c.logger.Errorf("Failed to marshal settings: %v", err)
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return map[string]interface{}{
		"id":       inboundID,
		"settings": string(settingsJSON),
	}, nil
}

// checkEnvelope parses a response envelope and converts a failed reply into
// a panel API error
func (c *Client) checkEnvelope(operation string, body []byte) error {
	if len(body) == 0 {
		return &errs.PanelAPIError{Operation: operation, Status: http.StatusOK, Message: "empty response from server"}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", operation, err)
	}

	if !apiResp.Success {
		return &errs.PanelAPIError{Operation: operation, Status: http.StatusOK, Message: apiResp.Msg}
	}

	return nil
}
