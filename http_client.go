package main

import (
	"net/http"
	"time"
)

const externalHTTPTimeout = 30 * time.Second

// externalHTTPClient bounds all outbound API calls (Slack, Anthropic).
var externalHTTPClient = &http.Client{
	Timeout: externalHTTPTimeout,
}
