package monitor

import (
	"github.com/mssola/useragent"
)

// ClientInfo is a parsed description of the client that triggered an alert.
type ClientInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

// describeClient parses a User-Agent header. Returns nil for an empty header.
func describeClient(header string) *ClientInfo {
	if header == "" {
		return nil
	}
	ua := useragent.New(header)
	name, version := ua.Browser()
	return &ClientInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}
