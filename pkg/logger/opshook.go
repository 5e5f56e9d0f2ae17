package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// KeySendOpsAlert marks a log entry for forwarding to the ops webhook.
const KeySendOpsAlert = "send_ops_alert"

// OpsWebhookCore is a zapcore.Core that mirrors flagged error entries to an
// operations webhook so failures surface outside the log stream.
type OpsWebhookCore struct {
	core       zapcore.Core
	webhookURL string
	minLevel   zapcore.Level
}

// NewOpsWebhookCore wraps core. Entries at minLevel or above carrying the
// KeySendOpsAlert field are posted to webhookURL.
func NewOpsWebhookCore(core zapcore.Core, webhookURL string, minLevel zapcore.Level) *OpsWebhookCore {
	return &OpsWebhookCore{
		core:       core,
		webhookURL: webhookURL,
		minLevel:   minLevel,
	}
}

// WithOpsWebhook returns a logger whose core mirrors flagged entries to the
// given webhook. An empty URL returns the logger unchanged.
func (l *Logger) WithOpsWebhook(webhookURL, minLevel string) *Logger {
	if webhookURL == "" {
		return l
	}
	lvl := zapcore.ErrorLevel
	_ = lvl.UnmarshalText([]byte(minLevel))
	return l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewOpsWebhookCore(core, webhookURL, lvl)
	}))
}

func (a *OpsWebhookCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *OpsWebhookCore) With(fields []zapcore.Field) zapcore.Core {
	return &OpsWebhookCore{
		core:       a.core.With(fields),
		webhookURL: a.webhookURL,
		minLevel:   a.minLevel,
	}
}

func (a *OpsWebhookCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return a.core.Check(entry, checkedEntry).AddCore(entry, a)
	}
	return checkedEntry
}

func (a *OpsWebhookCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	shouldSend := false
	for _, f := range fields {
		if f.Key == KeySendOpsAlert && f.Type == zapcore.BoolType && f.Integer == 1 {
			shouldSend = true
			break
		}
	}
	if entry.Level >= a.minLevel && shouldSend && a.webhookURL != "" {
		go a.postWebhook(entry, fields) // async so logging never blocks
	}
	return a.core.Write(entry, fields)
}

func (a *OpsWebhookCore) Sync() error {
	return a.core.Sync()
}

func (a *OpsWebhookCore) postWebhook(entry zapcore.Entry, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	delete(enc.Fields, KeySendOpsAlert)

	payload := map[string]interface{}{
		"level":   entry.Level.CapitalString(),
		"message": entry.Message,
		"fields":  enc.Fields,
		"time":    entry.Time.Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return
	}

	resp, err := http.Post(a.webhookURL, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		fmt.Printf("ops webhook post failed: %v\n", err)
		return
	}
	_ = resp.Body.Close()
}
