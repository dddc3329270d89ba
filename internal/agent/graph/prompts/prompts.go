package prompts

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/*.txt
var templates embed.FS

func mustTemplate(name string) string {
	b, err := templates.ReadFile("template/" + name)
	if err != nil {
		panic(fmt.Sprintf("prompt template %s: %v", name, err))
	}
	return string(b)
}

// render formats messages via the Eino prompt component (Go template) so
// prompt callbacks fire for every rendered prompt.
func render(ctx context.Context, name string, vars map[string]any, msgs ...schema.MessagesTemplate) ([]*schema.Message, error) {
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      "GoTemplate",
		Component: components.ComponentOfPrompt,
	})
	tpl := prompt.FromMessages(schema.GoTemplate, msgs...)
	out, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(out) == 0 || out[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return out, nil
}

// compactJSON marshals a payload for embedding in a prompt.
func compactJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
