package ai

const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"

	// DefaultProvider/DefaultModel are used when a request names no model.
	DefaultProvider = ProviderOllama
	DefaultModel    = "llama3.2"
)

// CatalogEntry lists the models one provider accepts.
type CatalogEntry struct {
	Provider string
	Models   []string
}

// Catalog is a static, ordered provider-to-models table. Model resolution
// scans entries in order and the first provider listing the model wins, so a
// model name should not appear under more than one provider.
type Catalog struct {
	entries []CatalogEntry
}

func NewCatalog(entries ...CatalogEntry) *Catalog {
	return &Catalog{entries: entries}
}

// DefaultCatalog routes ollama-hosted models first, then Hugging Face.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		CatalogEntry{
			Provider: ProviderOllama,
			Models:   []string{"llama3.2", "llama3.1", "mistral"},
		},
		CatalogEntry{
			Provider: ProviderHuggingFace,
			Models: []string{
				"deepseek-ai/DeepSeek-R1-0528",
				"meta-llama/Meta-Llama-3-8B-Instruct",
				"Qwen/Qwen2.5-7B-Instruct",
			},
		},
	)
}

// ResolveModel returns the provider owning the given model name.
func (c *Catalog) ResolveModel(model string) (string, bool) {
	for _, e := range c.entries {
		for _, m := range e.Models {
			if m == model {
				return e.Provider, true
			}
		}
	}
	return "", false
}

// AllowedModels concatenates every model list in catalog order, for error
// messages that enumerate valid choices.
func (c *Catalog) AllowedModels() []string {
	var out []string
	for _, e := range c.entries {
		out = append(out, e.Models...)
	}
	return out
}
