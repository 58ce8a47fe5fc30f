package models

// RemoteClient represents a client object on the 3X-UI panel.
//
// The panel uses two shapes for the same entity: traffic stats reads report
// usage via "total"/"up"/"down", while create and update requests carry the
// quota in "totalGB" (still bytes, despite the name). Both live here so the
// reconciliation service can read one shape and write the other.
type RemoteClient struct {
	Email      string `json:"email"`
	Enable     bool   `json:"enable"`
	ID         string `json:"id"`
	SubID      string `json:"subId"`
	Flow       string `json:"flow,omitempty"`
	LimitIP    int    `json:"limitIp"`
	TotalGB    int64  `json:"totalGB"`
	Total      int64  `json:"total"`
	Up         int64  `json:"up"`
	Down       int64  `json:"down"`
	ExpiryTime int64  `json:"expiryTime"`
	InboundID  int    `json:"inboundId"`
}

// ToSettings converts the client to the map shape the panel expects inside
// the "settings" payload of addClient/updateClient requests.
func (c *RemoteClient) ToSettings() map[string]interface{} {
	result := map[string]interface{}{
		"id":         c.ID,
		"enable":     c.Enable,
		"email":      c.Email,
		"limitIp":    c.LimitIP,
		"totalGB":    c.TotalGB,
		"expiryTime": c.ExpiryTime,
		"subId":      c.SubID,
	}

	if c.Flow != "" {
		result["flow"] = c.Flow
	}

	return result
}

// ClientData is the derived subscription view computed from a RemoteClient.
// All traffic values are bytes, expiry is epoch milliseconds. A value of -1
// means "unlimited" for the traffic totals and "never expires" for the
// expiry time. Never persisted, computed fresh on every query.
type ClientData struct {
	TrafficTotal     int64
	TrafficRemaining int64
	TrafficUsed      int64
	TrafficUp        int64
	TrafficDown      int64
	ExpiryTime       int64
}
