package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"quotation-service/internal/pricing"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

const (
	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.4
)

const (
	systemPromptEnglish = "You write polite, professional sales quotation emails in English. " +
		"Return the subject on the first line prefixed with \"Subject:\", then a blank line, then the email body. " +
		"Include every figure from the quotation exactly as given; never invent prices."
	systemPromptArabic = "أنت تكتب رسائل بريد إلكتروني مهذبة ومهنية لعروض الأسعار باللغة العربية. " +
		"أعد سطر الموضوع أولاً مسبوقاً بـ \"الموضوع:\"، ثم سطراً فارغاً، ثم نص الرسالة. " +
		"أدرج كل الأرقام من عرض السعر كما هي دون أي تغيير."
)

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

// Generate requests an email draft for the given prompt. One attempt,
// bounded by a per-call timeout; retries are the caller's decision.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, lang string) (string, error) {
	if c == nil || c.client == nil {
		return "", &GenerationError{Err: fmt.Errorf("nil openai client")}
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	system := systemPromptEnglish
	if lang == pricing.LangArabic {
		system = systemPromptArabic
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(system, prompt),
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &GenerationError{Err: fmt.Errorf("openai: no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
