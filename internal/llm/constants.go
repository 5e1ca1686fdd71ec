package llm

// DefaultModel is the Gemini model used when configuration does not name one.
const DefaultModel = "gemini-2.0-flash"

// defaultMaxOutputTokens caps response length when no limit is configured.
const defaultMaxOutputTokens = 4096
