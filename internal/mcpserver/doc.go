// Package mcpserver serves the testafy client as Model Context Protocol
// tools, so an assistant can submit behavioral tests and read their results.
//
// Tools:
//
//	testafy_run           submit a script and, unless async, wait for it
//	testafy_status        current status of a run
//	testafy_stats         passed, failed and planned counts
//	testafy_results       TAP output
//	testafy_screenshots   list screenshots, or fetch one as an image
//	testafy_phrase_check  check a script without running it
//	testafy_ping          service health
//
// Service failures are returned as tool errors carrying the error kind, not
// as protocol errors.
package mcpserver
