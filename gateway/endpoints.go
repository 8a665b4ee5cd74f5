package gateway

import "strings"

const (
	SandboxBaseURL    = "https://pg-sandbox.paymaya.com"
	ProductionBaseURL = "https://pg.paymaya.com"

	tokensPath   = "/payments/v1/payment-tokens"
	paymentsPath = "/payments/v1/payments"
)

// Environment selects the gateway host
type Environment int

const (
	Sandbox Environment = iota
	Production
)

// EnvironmentFromFlag maps a production flag to an Environment
func EnvironmentFromFlag(production bool) Environment {
	if production {
		return Production
	}
	return Sandbox
}

func (e Environment) String() string {
	if e == Production {
		return "production"
	}
	return "sandbox"
}

// BaseURL returns the gateway host for the environment
func (e Environment) BaseURL() string {
	if e == Production {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// Endpoints are the fully resolved URLs of one gateway host
type Endpoints struct {
	Tokens   string
	Payments string
}

// EndpointsFor resolves the endpoints of env
func EndpointsFor(env Environment) Endpoints {
	return EndpointsForBase(env.BaseURL())
}

// EndpointsForBase resolves the endpoints against an arbitrary host
func EndpointsForBase(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		Tokens:   base + tokensPath,
		Payments: base + paymentsPath,
	}
}

// StatusURL substitutes id into the payment status path as-is
func (e Endpoints) StatusURL(id string) string {
	return e.Payments + "/" + id
}
