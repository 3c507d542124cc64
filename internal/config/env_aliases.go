package config

// DefaultEnvAliases maps config keys to extra environment variables honoured
// alongside the SOLVECHECK_ prefixed form.
func DefaultEnvAliases() map[string][]string {
	aliases := map[string][]string{
		"llm.api_key":  {"OPENAI_API_KEY"},
		"llm.base_url": {"OPENAI_BASE_URL"},
		"llm.model":    {"OPENAI_MODEL"},
	}

	copy := make(map[string][]string, len(aliases))
	for key, list := range aliases {
		copy[key] = append([]string(nil), list...)
	}
	return copy
}
