package platforms

import (
	"context"
	"strings"
)

type FeishuAdapter struct {
	client *HTTPClient
}

func NewFeishuAdapter(client *HTTPClient) *FeishuAdapter {
	return &FeishuAdapter{client: client}
}

func (a *FeishuAdapter) Name() string {
	return "feishu"
}

func (a *FeishuAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	signature, bearer := parseFeishuSecret(secret)
	headers := map[string]string{}
	if signature != "" {
		headers["X-Lark-Signature"] = signature
	}
	if bearer != "" {
		headers["Authorization"] = "Bearer " + bearer
	}
	return a.client.PostJSON(ctx, endpoint, headers, feishuCard(msg))
}

func feishuCard(msg Message) map[string]any {
	elements := make([]map[string]string, 0, len(msg.Fields)+2)
	elements = append(elements, map[string]string{
		"tag":  "markdown",
		"text": fallback(msg.Description, msg.Content),
	})
	for _, f := range msg.Fields {
		elements = append(elements, map[string]string{
			"tag":  "markdown",
			"text": "**" + f.Name + "**: " + f.Value,
		})
	}
	if msg.Footer != "" {
		elements = append(elements, map[string]string{"tag": "markdown", "text": msg.Footer})
	}
	template := "blue"
	if msg.Color == ColorWarn {
		template = "orange"
	}
	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title": map[string]any{
					"tag":     "plain_text",
					"content": msg.Title,
				},
				"template": template,
			},
			"elements": elements,
		},
	}
}

// parseFeishuSecret accepts "sig:<v>;bearer:<v>" or a bare signature.
func parseFeishuSecret(secret string) (signature string, bearer string) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return "", ""
	}
	parts := strings.Split(s, ";")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "sig:"):
			signature = strings.TrimSpace(strings.TrimPrefix(p, "sig:"))
		case strings.HasPrefix(p, "bearer:"):
			bearer = strings.TrimSpace(strings.TrimPrefix(p, "bearer:"))
		case len(parts) == 1:
			signature = p
		}
	}
	return signature, bearer
}

func fallback(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
