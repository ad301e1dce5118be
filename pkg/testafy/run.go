package testafy

// TestRun is the client-side view of one server-side run. It is a value:
// lifecycle operations take a TestRun and hand back an updated copy, and each
// Submit produces a fresh one.
type TestRun struct {
	// TestID is issued by the service. Empty means nothing was submitted.
	TestID string `json:"test_id,omitempty"`
	// Status is the last status returned by a status query. It is a record of
	// what the server said, not a cache; status queries always re-fetch.
	Status Status `json:"status,omitempty"`
	// LastMessage is the "message" of the most recent response.
	LastMessage string `json:"last_message,omitempty"`
	// LastError is the "error" of the most recent response.
	LastError string `json:"last_error,omitempty"`
}

// RunFor returns a TestRun referring to a run submitted elsewhere.
func RunFor(testID string) TestRun {
	return TestRun{TestID: testID}
}

// Submitted reports whether the run has a server-issued identity.
func (r TestRun) Submitted() bool {
	return r.TestID != ""
}
