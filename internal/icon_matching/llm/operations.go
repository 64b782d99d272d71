package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

const extractPrompt = `You are a brand designer. Study the design screenshot and describe its visual language.
For every field answer with a few words. Use "None" when the design gives no signal for a field.`

const describePrompt = `You write search queries for an icon library. Turn the design attributes into one short
description (at most eight words) of the icons that would fit the design.`

const classifyPrompt = `Pick the single allowed value that best matches the text. Answer only with an allowed value.`

const matchPrompt = `The user is refining a set of icons. Extract the color and the icon shape they ask for.
Map the color onto the closest allowed color and the shape onto the closest allowed shape.
Answer with an empty string for a dimension the user does not mention.`

const rewritePrompt = `You maintain the design attributes used to search icons. Apply the user's request to the
current attributes and return the full updated set. Keep fields the request does not affect. Put new
subject keywords into description. Explain the change in one or two sentences in response.`

var visualDescriptions = map[string]string{
	domain.FieldColorPalette:   "dominant colors of the design",
	domain.FieldIconography:    "icon style used, for example flat, line or glyph",
	domain.FieldBrandStyle:     "overall brand personality",
	domain.FieldGradientUsage:  "how gradients are used",
	domain.FieldImagery:        "kind of imagery, for example photos or illustrations",
	domain.FieldShadowAndDepth: "shadows and depth effects",
	domain.FieldLineThickness:  "stroke weight of lines and icons",
	domain.FieldCornerRounding: "corner radius of shapes",
}

func attributeSchema(withDescription bool) map[string]any {
	props := make(map[string]any, len(visualDescriptions)+2)
	for k, d := range visualDescriptions {
		props[k] = str(d)
	}
	if withDescription {
		props[domain.FieldDescription] = str("search keywords for the icons")
		props["response"] = str("short explanation of the change")
	}
	return object(props)
}

// Extract reads the visual attributes of a design image. Values may be the
// literal "None".
func (c *Client) Extract(ctx context.Context, image []byte, contentType string) (map[string]string, error) {
	if contentType == "" {
		contentType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(extractPrompt),
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart("Describe the visual attributes of this design."),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}),
	}

	out := map[string]string{}
	if err := c.completion(ctx, "design_attributes", c.visionModel, messages, attributeSchema(false), &out); err != nil {
		return nil, domain.External("attribute extraction failed", err)
	}
	return out, nil
}

// Describe writes a short search description for the joined attributes.
func (c *Client) Describe(ctx context.Context, attributes string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(describePrompt),
		openai.UserMessage(attributes),
	}
	var out struct {
		Description string `json:"description"`
	}
	schema := object(map[string]any{"description": str("icon search description")})
	if err := c.completion(ctx, "search_description", c.model, messages, schema, &out); err != nil {
		return "", domain.External("query writer failed", err)
	}
	return strings.TrimSpace(out.Description), nil
}

// Classify picks one of allowed for text.
func (c *Client) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	if len(allowed) == 0 {
		return "", fmt.Errorf("no allowed values")
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(classifyPrompt),
		openai.UserMessage(fmt.Sprintf("Allowed values: %s\nText: %s", strings.Join(allowed, ", "), text)),
	}
	var out struct {
		Value string `json:"value"`
	}
	schema := object(map[string]any{"value": enum(allowed, "the chosen value")})
	if err := c.completion(ctx, "classify", c.model, messages, schema, &out); err != nil {
		return "", domain.External("classification failed", err)
	}
	for _, a := range allowed {
		if strings.EqualFold(a, out.Value) {
			return a, nil
		}
	}
	return "", domain.External("classification failed", fmt.Errorf("answer %q outside allowed values", out.Value))
}

// MatchColorShape extracts the requested color and shape from a follow-up
// query. Either may be empty.
func (c *Client) MatchColorShape(ctx context.Context, query string) (domain.ColorShapeMatch, error) {
	colors := append([]string{""}, domain.ColorVocabulary...)
	shapes := append([]string{""}, domain.ShapeVocabulary...)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(matchPrompt),
		openai.UserMessage(query),
	}
	schema := object(map[string]any{
		"color": enum(colors, "requested color"),
		"shape": enum(shapes, "requested icon shape"),
	})

	var out domain.ColorShapeMatch
	if err := c.completion(ctx, "color_shape", c.model, messages, schema, &out); err != nil {
		return domain.ColorShapeMatch{}, domain.External("color and shape matching failed", err)
	}

	if v, ok := domain.LookupColor(out.Color); ok {
		out.Color = v
	} else {
		out.Color = ""
	}
	if v, ok := domain.LookupShape(out.Shape); ok {
		out.Shape = v
	} else {
		out.Shape = ""
	}
	return out, nil
}

// Rewrite applies a free-text request to attrs. It returns the raw
// replacement attributes and the model's explanation.
func (c *Client) Rewrite(ctx context.Context, attrs domain.AttributeRecord, query string) (map[string]string, string, error) {
	current, err := json.Marshal(attrs)
	if err != nil {
		return nil, "", fmt.Errorf("encode attributes: %w", err)
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(rewritePrompt),
		openai.UserMessage(fmt.Sprintf("Current attributes: %s\nRequest: %s", current, query)),
	}

	out := map[string]string{}
	if err := c.completion(ctx, "rewrite_attributes", c.model, messages, attributeSchema(true), &out); err != nil {
		return nil, "", domain.External("attribute rewrite failed", err)
	}
	explanation := strings.TrimSpace(out["response"])
	delete(out, "response")
	return out, explanation, nil
}
