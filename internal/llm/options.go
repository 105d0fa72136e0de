package llm

// clientConfig collects the settings applied by Options before a
// client is constructed.
type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
}

// Option configures an OpenAI-compatible client.
type Option func(*clientConfig)

// WithBaseURL points the client at a different API endpoint, such as a
// local inference server.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the model used when a ChatRequest leaves Model empty.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the temperature used when a ChatRequest leaves
// Temperature nil.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = &temp
	}
}

// Float64Ptr returns a pointer to v, for filling optional float fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
