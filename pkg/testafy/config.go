package testafy

import (
	"fmt"
	"strings"
)

// DefaultScript is submitted when a TestConfig has no script.
const DefaultScript = "For the url http://www.google.com\nthen pass this test"

// TestConfig holds the inputs of a test. It is never modified by the client.
type TestConfig struct {
	// BaseURI is the service root, e.g. "https://app.testafy.com/api/v0/".
	BaseURI string
	// LoginName and Password are sent as Basic authentication.
	LoginName string
	Password  string
	// Mode selects the endpoint family. Use ModeFromLogin to derive it from
	// the reserved AnonymousLogin name.
	Mode AccountMode
	// Script is the behavioral test text submitted as "pbehave".
	Script string
	// Product is an optional product label sent with the run.
	Product string
	// WantScreenshots asks the service to capture screenshots.
	WantScreenshots bool
	// ResultsFormat optionally selects the results "type".
	ResultsFormat string
}

// NewTestConfig returns a config for an account login. The reserved
// AnonymousLogin name selects ModeAnonymous.
func NewTestConfig(baseURI, login, password, script string) TestConfig {
	return TestConfig{
		BaseURI:   baseURI,
		LoginName: login,
		Password:  password,
		Mode:      ModeFromLogin(login),
		Script:    script,
	}
}

// AnonymousConfig returns a config for the credential-less trial tier.
func AnonymousConfig(baseURI, script string) TestConfig {
	return TestConfig{
		BaseURI:   baseURI,
		LoginName: AnonymousLogin,
		Mode:      ModeAnonymous,
		Script:    script,
	}
}

// Validate checks the fields every call depends on.
func (c TestConfig) Validate() error {
	if strings.TrimSpace(c.BaseURI) == "" {
		return newError(KindConfiguration, "", 0, "no base URI configured", nil)
	}
	if c.Mode == ModeAccount && c.LoginName == "" {
		return newError(KindConfiguration, "", 0, "login name is required for account mode", nil)
	}
	if c.Mode != ModeAccount && c.Mode != ModeAnonymous {
		return newError(KindConfiguration, "", 0, fmt.Sprintf("unknown account mode %d", c.Mode), nil)
	}
	return nil
}

func (c TestConfig) script() string {
	if c.Script == "" {
		return DefaultScript
	}
	return c.Script
}

func (c TestConfig) credentials() Credentials {
	return Credentials{Username: c.LoginName, Password: c.Password}
}

// String omits the password.
func (c TestConfig) String() string {
	return fmt.Sprintf("TestConfig{BaseURI:%q LoginName:%q Mode:%s Screenshots:%t}",
		c.BaseURI, c.LoginName, c.Mode, c.WantScreenshots)
}
