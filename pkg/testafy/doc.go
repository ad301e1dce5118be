// Package testafy is a client for the Testafy behavioral test service.
//
// A run is submitted, polled until it reaches a terminal status, and then its
// check counts, TAP results and screenshots are read on demand. All calls are
// HTTP POSTs carrying a JSON object in the "json" form field, authenticated
// with HTTP Basic auth.
//
// # Configuration and run state
//
// TestConfig holds the inputs and is never modified. Run state lives in a
// TestRun value: Client methods take the current TestRun and return an
// updated copy, and every Submit starts a new one.
//
//	cfg := testafy.NewTestConfig("https://app.testafy.com/api/v0/", "user", "pass", script)
//	client := testafy.NewClient(cfg)
//
//	run, err := client.RunAndWait(ctx, testafy.WaitOptions{PollInterval: 5 * time.Second})
//	if err != nil {
//	    return err
//	}
//	stats, run, err := client.Stats(ctx, run)
//	report, run, err := client.ResultsString(ctx, run)
//
// Test wraps a Client and its current run for the common one-run-at-a-time
// case:
//
//	test := testafy.NewTest(cfg)
//	if _, err := test.Run(ctx, true); err != nil {
//	    return err
//	}
//	for done := false; !done; {
//	    time.Sleep(time.Second)
//	    if done, err = test.Done(ctx); err != nil {
//	        return err
//	    }
//	}
//
// # Account modes
//
// ModeAccount uses the "test/" endpoints, ModeAnonymous the "try_it_now/"
// ones. NewTestConfig picks ModeAnonymous for the reserved login "try_it_now".
//
// # Errors
//
// Every failed call returns an *Error whose Kind is one of KindConfiguration,
// KindInvalidEndpoint, KindClientRequest, KindServer or KindTransport. Use
// IsKind or errors.As to inspect it. Calls that need a run return zero values
// without contacting the service when no run has been submitted.
package testafy
