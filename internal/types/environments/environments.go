package environments

// Environment classifies where the client code is currently running. It is
// derived once per evaluation from the execution context and never mutated.
type Environment string

const (
	Server      Environment = "server"
	Development Environment = "development"
	Fly         Environment = "fly"
	Netlify     Environment = "netlify"
	Vercel      Environment = "vercel"
	Railway     Environment = "railway"
	Render      Environment = "render"
	Heroku      Environment = "heroku"
	Production  Environment = "production"

	// Test is never produced by detection; it exists so test suites can pick
	// the quiet logger configuration.
	Test Environment = "test"
)
