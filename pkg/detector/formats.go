package detector

import "regexp"

// LineFormat represents a known access-log line format for detection.
type LineFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for reporting
	Supported  bool           // True if haplog can analyze this format
	Hint       string         // Guidance shown when this format is detected
}

// Fragments shared by the HAProxy format patterns.
const (
	syslogPrefix = `^(?:\w+\s+\d+\s+\d+:\d+:\d+(?:\.\d+)?\s+\S+\s+haproxy\[\d+\]:\s+)?`
	clientField  = `\S+:\d+\s+`
	acceptField  = `\[\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}(?:\.\d+)?\]\s+`
)

// DefaultFormats returns the built-in line formats to detect.
// Formats are ordered by specificity (more specific patterns first).
func DefaultFormats() []*LineFormat {
	formats := []*LineFormat{
		{
			Name: "HAProxy HTTP log",
			PatternStr: syslogPrefix + clientField + acceptField +
				`\S+\s+[^/\s]+/\S+\s+` +
				`-?\d+/-?\d+/-?\d+/-?\d+/\+?\d+\s+` +
				`-?\d+\s+\+?\d+\s+.*"[^"]*"$`,
			Supported: true,
		},
		{
			Name: "HAProxy TCP log",
			PatternStr: syslogPrefix + clientField + acceptField +
				`\S+\s+[^/\s]+/\S+\s+` +
				`-?\d+/-?\d+/\+?\d+\s+\+?\d+\s+\S+\s+` +
				`\d+/\d+/\d+/\d+/\+?\d+\s+\d+/\d+$`,
			Supported: false,
			Hint:      "TCP-mode logs carry no HTTP fields; switch the proxy to 'option httplog'",
		},
		{
			Name:       "HAProxy error log",
			PatternStr: syslogPrefix + clientField + acceptField + `\S+/\S+:\s+\S+.*$`,
			Supported:  false,
			Hint:       "connection error lines are counted as invalid during analysis",
		},
		{
			Name:       "Apache/NGINX combined log",
			PatternStr: `^\S+\s+\S+\s+\S+\s+\[\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}\s+[+-]\d{4}\]\s+"[^"]*"\s+\d{3}\s+\S+`,
			Supported:  false,
			Hint:       "this looks like a web-server access log, not an HAProxy log",
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
