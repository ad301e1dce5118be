// Package suite runs collections of behavioral scripts and checks their
// outcomes.
//
// A suite file lists scenarios:
//
//	name: checkout
//	vars:
//	  url: https://shop.example.com
//	scenarios:
//	  - name: home page loads
//	    script: |
//	      For the url {{ .vars.url }}
//	      then the page should contain "Welcome"
//	    expect:
//	      passed_min: 1
//	  - name: cart
//	    script_file: scripts/cart.pbehave
//	    screenshots: true
//	    timeout: 5m
//	    tags: [slow]
//	    expect:
//	      failed_max: 0
//	      planned: 6
//	      contains: ["ok 6"]
//
// Scripts are Go templates with the sprig function library; scenario vars
// override suite vars. Each scenario is submitted on its own testafy.Test,
// waited on and then judged against its expectations. Without expectations a
// scenario passes when its run completes with no failed checks.
//
// Runner.Run executes scenarios on a bounded worker pool. With fail-fast,
// scenarios that have not started when one fails are reported as skipped.
package suite
