// Package main provides the entry point for the lpaudit CLI.
//
// lpaudit audits paid-traffic landing pages: it renders the page in a
// headless browser at desktop and mobile sizes, extracts the facts that
// drive ad quality and grades them.
//
// Usage:
//
//	lpaudit analyze <url>
//	lpaudit fetch <url>
//	lpaudit screenshot <url> --all
//	lpaudit serve
//	lpaudit mcp
//
// See --help for all available options.
package main

// main is the entry point for lpaudit.
func main() {
	Execute()
}
