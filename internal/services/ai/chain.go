package ai

// ModelChain is an ordered list of model identifiers, best quality first.
// On a retryable failure the next entry in the chain is tried.
type ModelChain []string

// NewModelChain creates a chain from the configured model list
func NewModelChain(models []string) ModelChain {
	chain := make(ModelChain, len(models))
	copy(chain, models)
	return chain
}

// Head returns the first (best) model in the chain
func (c ModelChain) Head() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Index returns the position of a model in the chain, or -1 if unknown
func (c ModelChain) Index(model string) int {
	for i, m := range c {
		if m == model {
			return i
		}
	}
	return -1
}

// Next returns the fallback model after the given one. The second return
// is false when the model is the last entry or not in the chain.
func (c ModelChain) Next(model string) (string, bool) {
	idx := c.Index(model)
	if idx < 0 || idx == len(c)-1 {
		return "", false
	}
	return c[idx+1], true
}

// Normalize maps an unknown or empty model to the head of the chain
func (c ModelChain) Normalize(model string) string {
	if c.Index(model) < 0 {
		return c.Head()
	}
	return model
}
