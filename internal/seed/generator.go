// ABOUTME: AI-powered demo record generator for entity collections.
// ABOUTME: Asks OpenAI for records shaped by an entity's form fields, falling back to static data.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/2389/adminkit/internal/schema"
)

// Generator creates demo records using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// Option configures a Generator.
type Option func(*openai.ClientConfig)

// WithBaseURL points the OpenAI client at another endpoint, such as a proxy.
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) { c.BaseURL = url }
}

// NewGenerator creates a generator. An empty apiKey selects static data.
func NewGenerator(apiKey, model string, opts ...Option) *Generator {
	g := &Generator{model: model}
	if g.model == "" {
		g.model = "gpt-5-mini"
	}

	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		for _, opt := range opts {
			opt(&cfg)
		}
		g.client = openai.NewClientWithConfig(cfg)
		g.useAI = true
		log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	} else {
		log.Println("No OPENAI_API_KEY found, using static fallback data")
	}
	return g
}

// UsesAI reports whether records come from OpenAI.
func (g *Generator) UsesAI() bool {
	return g.useAI
}

// Generate creates count records for cfg. AI failures fall back to static
// records rather than failing the seed.
func (g *Generator) Generate(ctx context.Context, cfg *schema.EntityConfig, count int) []schema.Record {
	if count <= 0 {
		return nil
	}
	if !g.useAI {
		return generateStatic(cfg, count)
	}

	log.Printf("  ⏳ Generating %d %s...", count, strings.ToLower(cfg.PluralName()))
	raw, err := callOpenAI[[]map[string]any](ctx, g.client, g.model, buildPrompt(cfg, count))
	if err != nil {
		log.Printf("  ✗ Failed to generate %s: %v", cfg.Key(), err)
		log.Print("AI generation incomplete, falling back to static data...")
		return generateStatic(cfg, count)
	}

	records := make([]schema.Record, 0, count)
	static := generateStatic(cfg, count)
	for i := 0; i < count; i++ {
		if i >= len(raw) {
			records = append(records, static[i])
			continue
		}
		records = append(records, normalize(cfg, raw[i], static[i]))
	}
	log.Printf("  ✓ Generated %d %s", len(records), strings.ToLower(cfg.PluralName()))
	return records
}

func buildPrompt(cfg *schema.EntityConfig, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d realistic %s for an online store's admin console.\n", count, strings.ToLower(cfg.PluralName()))
	b.WriteString("Return a JSON array of objects. Each object has exactly these keys:\n")
	for _, f := range cfg.FormFields {
		if f.Kind == schema.KindFile {
			continue
		}
		fmt.Fprintf(&b, "- %q (%s", f.Name, describeKind(f))
		if f.Required {
			b.WriteString(", required")
		}
		b.WriteString(")")
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("Make the content varied and plausible.")
	return b.String()
}

func describeKind(f schema.FieldSchema) string {
	switch f.Kind {
	case schema.KindNumber:
		lo, hi := numberRange(f)
		return fmt.Sprintf("number between %g and %g", lo, hi)
	case schema.KindCheckbox:
		return "boolean"
	case schema.KindSelect:
		values := make([]string, len(f.Options))
		for i, o := range f.Options {
			values[i] = fmt.Sprintf("%v", o.Value)
		}
		return "one of " + strings.Join(values, ", ")
	case schema.KindDate:
		return "date as YYYY-MM-DD"
	case schema.KindEmail:
		return "email address"
	case schema.KindTextarea:
		return "one or two sentences"
	default:
		return "short text"
	}
}

// normalize coerces one AI-generated object to the field kinds, using the
// static record for anything missing or unusable.
func normalize(cfg *schema.EntityConfig, raw map[string]any, fallback schema.Record) schema.Record {
	out := fallback.Clone()
	for _, f := range cfg.FormFields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		if coerced, ok := coerce(f, v); ok {
			schema.Assign(out, f.Name, coerced)
		}
	}
	return out
}

func coerce(f schema.FieldSchema, v any) (any, bool) {
	switch f.Kind {
	case schema.KindNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			return parsed, err == nil
		}
		return nil, false
	case schema.KindCheckbox:
		b, ok := v.(bool)
		return b, ok
	case schema.KindSelect:
		for _, o := range f.Options {
			if fmt.Sprint(o.Value) == fmt.Sprint(v) {
				return o.Value, true
			}
		}
		return nil, false
	case schema.KindFile:
		return nil, false
	default:
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		return s, true
	}
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
