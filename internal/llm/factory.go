package llm

import (
	"context"
	"fmt"

	"github.com/skillprep/assess/internal/telemetry"
)

// NewProvider creates a Provider from configuration, wrapped with
// telemetry. Retry is owned by the acquisition pipeline, not the
// provider stack.
func NewProvider(ctx context.Context, cfg Config, sink telemetry.Sink) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if sink == nil {
		sink = telemetry.Nop{}
	}
	return WithTelemetry(base, sink), nil
}
