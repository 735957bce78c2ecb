package provider

// Default returns the built-in provider catalog.
//
// Every entry targets an OpenAI-compatible chat-completions endpoint;
// BaseURL is the prefix in front of /chat/completions.
func Default() *Catalog {
	return NewCatalog(map[string]Provider{
		"openai": {
			Name:           "OpenAI",
			BaseURL:        "https://api.openai.com/v1",
			CredentialName: "OpenAI API Key",
			CredentialHelp: "Create one at platform.openai.com/api-keys",
			ModelOrder:     []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
			Models: map[string]Model{
				"gpt-4o":        {Label: "GPT-4o", CostLabel: "premium pricing"},
				"gpt-4o-mini":   {Label: "GPT-4o mini", CostLabel: "very cost-effective"},
				"gpt-4-turbo":   {Label: "GPT-4 Turbo", CostLabel: "premium pricing"},
				"gpt-3.5-turbo": {Label: "GPT-3.5 Turbo", CostLabel: "low cost"},
			},
		},
		"gemini": {
			Name:           "Google Gemini",
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta/openai",
			CredentialName: "Gemini API Key",
			CredentialHelp: "Create one at aistudio.google.com/apikey",
			ModelOrder:     []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-pro", "gemini-1.5-flash"},
			Models: map[string]Model{
				"gemini-2.5-pro":   {Label: "Gemini 2.5 Pro", CostLabel: "moderate cost"},
				"gemini-2.5-flash": {Label: "Gemini 2.5 Flash", CostLabel: "low cost, fast"},
				"gemini-1.5-pro":   {Label: "Gemini 1.5 Pro", CostLabel: "moderate cost"},
				"gemini-1.5-flash": {Label: "Gemini 1.5 Flash", CostLabel: "low cost"},
			},
		},
		"deepseek": {
			Name:           "DeepSeek",
			BaseURL:        "https://api.deepseek.com/v1",
			CredentialName: "DeepSeek API Key",
			CredentialHelp: "Create one at platform.deepseek.com",
			ModelOrder:     []string{"deepseek-v3", "deepseek-r1", "deepseek-v2.5", "deepseek-coder-v2"},
			Models: map[string]Model{
				"deepseek-v3":       {Label: "DeepSeek V3", CostLabel: "very cost-effective"},
				"deepseek-r1":       {Label: "DeepSeek R1", CostLabel: "very cost-effective"},
				"deepseek-v2.5":     {Label: "DeepSeek V2.5", CostLabel: "very cost-effective"},
				"deepseek-coder-v2": {Label: "DeepSeek Coder V2", CostLabel: "very cost-effective"},
			},
		},
		"anthropic": {
			Name:           "Anthropic",
			BaseURL:        "https://api.anthropic.com/v1",
			CredentialName: "Anthropic API Key",
			CredentialHelp: "Create one at console.anthropic.com",
			ModelOrder:     []string{"claude-3.5-sonnet", "claude-3.5-haiku", "claude-3-opus", "claude-3-sonnet"},
			Models: map[string]Model{
				"claude-3.5-sonnet": {Label: "Claude 3.5 Sonnet", CostLabel: "premium pricing"},
				"claude-3.5-haiku":  {Label: "Claude 3.5 Haiku", CostLabel: "low cost, fast"},
				"claude-3-opus":     {Label: "Claude 3 Opus", CostLabel: "highest cost"},
				"claude-3-sonnet":   {Label: "Claude 3 Sonnet", CostLabel: "moderate cost"},
			},
		},
		"mistral": {
			Name:           "Mistral AI",
			BaseURL:        "https://api.mistral.ai/v1",
			CredentialName: "Mistral API Key",
			CredentialHelp: "Create one at console.mistral.ai",
			ModelOrder:     []string{"mistral-large-2", "mistral-medium-3", "mistral-small-3", "codestral"},
			Models: map[string]Model{
				"mistral-large-2":  {Label: "Mistral Large 2", CostLabel: "moderate cost"},
				"mistral-medium-3": {Label: "Mistral Medium 3", CostLabel: "moderate cost"},
				"mistral-small-3":  {Label: "Mistral Small 3", CostLabel: "low cost"},
				"codestral":        {Label: "Codestral", CostLabel: "low cost"},
			},
		},
		"xai": {
			Name:           "xAI",
			BaseURL:        "https://api.x.ai/v1",
			CredentialName: "xAI API Key",
			CredentialHelp: "Create one at console.x.ai",
			ModelOrder:     []string{"grok-3", "grok-3-reasoning", "grok-beta"},
			Models: map[string]Model{
				"grok-3":           {Label: "Grok 3", CostLabel: "moderate cost"},
				"grok-3-reasoning": {Label: "Grok 3 Reasoning", CostLabel: "higher cost"},
				"grok-beta":        {Label: "Grok Beta", CostLabel: "moderate cost"},
			},
		},
	})
}
