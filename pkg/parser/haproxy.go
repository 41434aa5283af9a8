package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrMalformedLine reports a line that does not conform to the HAProxy
// HTTP log format. All grammar failures (missing fields, bad timestamp,
// bad numbers) wrap this sentinel so callers can treat them uniformly.
var ErrMalformedLine = errors.New("malformed log line")

// acceptDateLayout is the HAProxy accept date format, e.g.
// "09/Dec/2013:12:59:46". Milliseconds are matched separately.
const acceptDateLayout = "02/Jan/2006:15:04:05"

// lineRegex matches one HAProxy HTTP-format log line. The syslog prefix
// ("Dec  9 13:01:26 localhost haproxy[28029]:") is optional so lines from
// both syslog files and direct file targets parse.
var lineRegex = regexp.MustCompile(
	`^(?:\w+\s+\d+\s+\d+:\d+:\d+(?:\.\d+)?\s+\S+\s+haproxy\[\d+\]:\s+)?` +
		// 127.0.0.1:39759
		`(?P<client_ip>[\d.]+|[0-9a-fA-F:.]+):(?P<client_port>\d+)\s+` +
		// [09/Dec/2013:12:59:46.633]
		`\[(?P<accept_date>\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2})(?:\.(?P<accept_ms>\d{1,3}))?\]\s+` +
		// loadbalancer default/instance8
		`(?P<frontend>\S+)\s+(?P<backend>[^/\s]+)/(?P<server>\S+)\s+` +
		// 0/51536/1/48082/99627
		`(?P<tq>-?\d+)/(?P<tw>-?\d+)/(?P<tc>-?\d+)/(?P<tr>-?\d+)/(?P<tt>\+?\d+)\s+` +
		// 200 83285
		`(?P<status>-?\d+)\s+(?P<bytes>\+?\d+)\s+` +
		// - - ---- (captured cookies and termination state)
		`\S+\s+\S+\s+\S+\s+` +
		// 87/87/87/1/0
		`(?P<act>\d+)/(?P<fe>\d+)/(?P<be>\d+)/(?P<srv>\d+)/(?P<retries>\+?\d+)\s+` +
		// 0/67
		`(?P<queue_server>\d+)/(?P<queue_backend>\d+)\s+` +
		// {77.24.148.74} {cache-hit} -- both blocks, request block only, or none
		`(?:(?P<req_headers>\{[^}]*\})\s+(?P<resp_headers>\{[^}]*\})\s+|(?P<headers>\{[^}]*\})\s+)?` +
		// "GET /path/to/image HTTP/1.1"
		`"(?P<http_request>[^"]*)"$`)

// requestRegex splits the quoted request text into method, path and
// protocol. "<BADREQ>" and truncated requests do not match.
var requestRegex = regexp.MustCompile(`^(?P<method>[A-Za-z]+)\s+(?P<path>\S+)(?:\s+(?P<protocol>\S+))?$`)

// HTTPLogParser parses HAProxy HTTP-format log lines.
// The zero value is not usable; use NewHTTPLogParser.
type HTTPLogParser struct {
	group map[string]int
}

// NewHTTPLogParser creates a parser for the HAProxy HTTP log format.
func NewHTTPLogParser() *HTTPLogParser {
	group := make(map[string]int)
	for i, name := range lineRegex.SubexpNames() {
		if name != "" {
			group[name] = i
		}
	}
	return &HTTPLogParser{group: group}
}

// Parse converts one stripped raw line into a LogEntry.
// Returns an error wrapping ErrMalformedLine when the line does not
// conform to the HTTP log grammar.
func (p *HTTPLogParser) Parse(line string) (*LogEntry, error) {
	matches := lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return nil, fmt.Errorf("%w: does not match HTTP log format", ErrMalformedLine)
	}

	field := func(name string) string {
		return matches[p.group[name]]
	}

	acceptDate, err := time.Parse(acceptDateLayout, field("accept_date"))
	if err != nil {
		return nil, fmt.Errorf("%w: accept date: %v", ErrMalformedLine, err)
	}
	if ms := field("accept_ms"); ms != "" {
		millis, err := strconv.Atoi(ms)
		if err != nil {
			return nil, fmt.Errorf("%w: accept date milliseconds: %v", ErrMalformedLine, err)
		}
		acceptDate = acceptDate.Add(time.Duration(millis) * time.Millisecond)
	}

	entry := &LogEntry{
		ClientIP:     field("client_ip"),
		AcceptDate:   acceptDate,
		FrontendName: field("frontend"),
		BackendName:  field("backend"),
		ServerName:   field("server"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"client_port", &entry.ClientPort},
		{"tq", &entry.TimeWaitRequest},
		{"tw", &entry.TimeWaitQueues},
		{"tc", &entry.TimeConnectServer},
		{"tr", &entry.TimeWaitResponse},
		{"tt", &entry.TotalTime},
		{"status", &entry.StatusCode},
		{"bytes", &entry.BytesRead},
		{"act", &entry.ConnActive},
		{"fe", &entry.ConnFrontend},
		{"be", &entry.ConnBackend},
		{"srv", &entry.ConnServer},
		{"retries", &entry.Retries},
		{"queue_server", &entry.QueueServer},
		{"queue_backend", &entry.QueueBackend},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(field(f.name))
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, f.name, err)
		}
		*f.dst = n
	}

	// A single capture block is a request-header capture; response-header
	// captures only appear alongside a request block.
	if hdrs := field("req_headers"); hdrs != "" {
		entry.CapturedRequestHeaders = &hdrs
		resp := field("resp_headers")
		entry.CapturedResponseHeaders = &resp
	} else if hdrs := field("headers"); hdrs != "" {
		entry.CapturedRequestHeaders = &hdrs
	}

	if req := requestRegex.FindStringSubmatch(field("http_request")); req != nil {
		entry.HTTPMethod = req[1]
		entry.HTTPPath = req[2]
		entry.HTTPProtocol = req[3]
	}

	return entry, nil
}
